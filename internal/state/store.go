package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that no state document exists yet. First runs hit
// this; callers treat it as an empty prior state.
var ErrNotFound = errors.New("state not found")

// Store loads and saves state documents.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
}

// NewStoreFromRef builds a store from a CLI-style reference: an
// s3://bucket/key URL or a local file path.
func NewStoreFromRef(ctx context.Context, ref string) (Store, error) {
	if rest, ok := strings.CutPrefix(ref, "s3://"); ok {
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid state reference %q, expected s3://bucket/key", ref)
		}
		return NewS3Store(ctx, bucket, key)
	}
	return NewFileStore(ref), nil
}

func checkVersion(st *State) error {
	if st.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported state format version %d, expected %d", st.FormatVersion, FormatVersion)
	}
	return nil
}
