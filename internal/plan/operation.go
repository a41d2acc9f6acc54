package plan

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weftlabs/weft/internal/topology"
)

// FormatVersion identifies the plan document layout. Decode rejects any
// other value.
const FormatVersion = 1

// OpType names the action a backend performs for one operation.
type OpType string

const (
	// OpCreate provisions a resource that is absent from prior state.
	OpCreate OpType = "create"
	// OpUpdateDependency revisits an already provisioned resource whose
	// dependency set may have changed.
	OpUpdateDependency OpType = "update-dependency"
)

// Operation is a single step of a plan.
type Operation struct {
	Index     int              `json:"index"`
	Name      string           `json:"name"`
	Kind      topology.Kind    `json:"kind"`
	Op        OpType           `json:"op"`
	DependsOn []string         `json:"depends_on,omitempty"`
	Config    topology.Payload `json:"config"`
}

// rawOperation mirrors Operation with the payload left undecoded, so
// UnmarshalJSON can pick the concrete type from the kind tag.
type rawOperation struct {
	Index     int             `json:"index"`
	Name      string          `json:"name"`
	Kind      topology.Kind   `json:"kind"`
	Op        OpType          `json:"op"`
	DependsOn []string        `json:"depends_on,omitempty"`
	Config    json.RawMessage `json:"config"`
}

// UnmarshalJSON decodes the payload into the concrete type named by the
// operation's kind.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw rawOperation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Index = raw.Index
	o.Name = raw.Name
	o.Kind = raw.Kind
	o.Op = raw.Op
	o.DependsOn = raw.DependsOn

	if len(raw.Config) == 0 {
		return fmt.Errorf("operation %q has no config payload", raw.Name)
	}
	payload, err := topology.NewPayload(raw.Kind)
	if err != nil {
		return fmt.Errorf("operation %q: %w", raw.Name, err)
	}
	if err := json.Unmarshal(raw.Config, payload); err != nil {
		return fmt.Errorf("operation %q: decode %s config: %w", raw.Name, raw.Kind, err)
	}
	o.Config = payload
	return nil
}

// Plan is an ordered list of operations. Executing them in index order
// never touches a resource before its dependencies.
type Plan struct {
	FormatVersion int         `json:"format_version"`
	Operations    []Operation `json:"operations"`
}

// Encode writes the plan as indented JSON.
func (p *Plan) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// Decode reads a plan previously written by Encode and checks its format
// version.
func Decode(r io.Reader) (*Plan, error) {
	var p Plan
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if p.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported plan format version %d, expected %d", p.FormatVersion, FormatVersion)
	}
	return &p, nil
}
