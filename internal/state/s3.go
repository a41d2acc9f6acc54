package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Environment variables for S3-compatible object storage. The endpoint
// override makes Hetzner Object Storage and MinIO work; without it the
// default AWS resolution applies.
const (
	envS3Endpoint  = "WEFT_S3_ENDPOINT"
	envS3AccessKey = "WEFT_S3_ACCESS_KEY"
	envS3SecretKey = "WEFT_S3_SECRET_KEY"
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the state document in an object store bucket.
type S3Store struct {
	api    objectAPI
	bucket string
	key    string
}

// NewS3Store builds a store for s3://bucket/key. Credentials come from
// the default AWS chain, or from WEFT_S3_ACCESS_KEY / WEFT_S3_SECRET_KEY
// when both are set.
func NewS3Store(ctx context.Context, bucket, key string) (*S3Store, error) {
	var loadOpts []func(*config.LoadOptions) error
	if access, secret := os.Getenv(envS3AccessKey), os.Getenv(envS3SecretKey); access != "" && secret != "" {
		loadOpts = append(loadOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(access, secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv(envS3Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &S3Store{api: client, bucket: bucket, key: key}, nil
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context) (*State, error) {
	result, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, s.key)
		}
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", s.key, s.bucket, err)
	}
	defer result.Body.Close()

	var st State
	if err := json.NewDecoder(result.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("failed to decode state object %s: %w", s.key, err)
	}
	if err := checkVersion(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", s.key, s.bucket, err)
	}
	return nil
}

// isNoSuchKey checks for a missing object. Typed errors come first; the
// API error code fallback covers S3-compatible services that do not
// return the exact SDK types.
func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
