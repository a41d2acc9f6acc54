package topology

import "fmt"

// Kind identifies a resource kind. The set is closed; builders exist for
// exactly these kinds.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindCache      Kind = "cache"
	KindService    Kind = "service"
	KindNamespace  Kind = "namespace"
	KindAutoscaler Kind = "autoscaler"
)

// Payload is the kind-specific configuration a node carries. Each kind has
// its own struct with a validated field set; nothing in the engine reads
// configuration through untyped maps.
type Payload interface {
	PayloadKind() Kind
}

// NetworkPayload is the configuration of an isolated network.
type NetworkPayload struct {
	CIDR string `json:"cidr"`
	Zone string `json:"zone,omitempty"`
}

func (*NetworkPayload) PayloadKind() Kind { return KindNetwork }

// CachePayload is the configuration of a managed in-memory cache.
type CachePayload struct {
	Network    string `json:"network"`
	Engine     string `json:"engine"`
	CapacityGB int    `json:"capacity_gb"`
	Port       int    `json:"port"`
}

func (*CachePayload) PayloadKind() Kind { return KindCache }

// ServicePayload is the configuration of a load-balanced container service.
// Env holds the final environment, including any addresses injected from the
// cache reference or link declarations.
type ServicePayload struct {
	Network  string            `json:"network"`
	Image    string            `json:"image"`
	Port     int               `json:"port"`
	Replicas int               `json:"replicas"`
	Cache    string            `json:"cache,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
}

func (*ServicePayload) PayloadKind() Kind { return KindService }

// NamespacePayload is the configuration of a service discovery namespace.
// Records maps a lowercased DNS label to the logical name of the registered
// service.
type NamespacePayload struct {
	Domain  string            `json:"domain"`
	Records map[string]string `json:"records,omitempty"`
}

func (*NamespacePayload) PayloadKind() Kind { return KindNamespace }

// ScalingStep maps a metric range to a replica delta. A nil bound leaves
// that side of the range open; both bounds are inclusive.
type ScalingStep struct {
	LowerBound *float64 `json:"lower_bound,omitempty"`
	UpperBound *float64 `json:"upper_bound,omitempty"`
	Delta      int      `json:"delta"`
}

// AutoscalerPayload is the configuration of an autoscaling policy attached
// to a single service.
type AutoscalerPayload struct {
	Service     string        `json:"service"`
	MinReplicas int           `json:"min_replicas"`
	MaxReplicas int           `json:"max_replicas"`
	Steps       []ScalingStep `json:"steps"`
}

func (*AutoscalerPayload) PayloadKind() Kind { return KindAutoscaler }

// NewPayload returns an empty payload of the given kind, ready to be
// unmarshaled into. It is the decoding counterpart of PayloadKind.
func NewPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindNetwork:
		return &NetworkPayload{}, nil
	case KindCache:
		return &CachePayload{}, nil
	case KindService:
		return &ServicePayload{}, nil
	case KindNamespace:
		return &NamespacePayload{}, nil
	case KindAutoscaler:
		return &AutoscalerPayload{}, nil
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
}
