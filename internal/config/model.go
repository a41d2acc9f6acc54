package config

// Document is the unified, format-agnostic representation of every resource
// declared in the input, in declaration order per kind. Loaders append to it
// file by file; builders read it exactly once.
type Document struct {
	Networks    []*NetworkSpec
	Caches      []*CacheSpec
	Services    []*ServiceSpec
	Namespaces  []*NamespaceSpec
	Autoscalers []*AutoscalerSpec
}

// NewDocument creates and returns an initialized, empty Document.
func NewDocument() *Document {
	return &Document{}
}

// Merge appends every declaration from other onto d, preserving order.
func (d *Document) Merge(other *Document) {
	d.Networks = append(d.Networks, other.Networks...)
	d.Caches = append(d.Caches, other.Caches...)
	d.Services = append(d.Services, other.Services...)
	d.Namespaces = append(d.Namespaces, other.Namespaces...)
	d.Autoscalers = append(d.Autoscalers, other.Autoscalers...)
}

// Len returns the total number of declarations in the document.
func (d *Document) Len() int {
	return len(d.Networks) + len(d.Caches) + len(d.Services) + len(d.Namespaces) + len(d.Autoscalers)
}

// NetworkSpec declares an isolated network.
type NetworkSpec struct {
	Name      string
	CIDR      string
	Zone      string
	DependsOn []string
}

// CacheSpec declares a managed in-memory cache attached to a network.
type CacheSpec struct {
	Name       string
	Network    string
	Engine     string
	CapacityGB int
	Port       int
	DependsOn  []string
}

// ServiceSpec declares a load-balanced container service. Cache optionally
// names a cache whose address is injected into the service environment;
// Links wire in the addresses of peer services the same way.
type ServiceSpec struct {
	Name      string
	Network   string
	Image     string
	Port      int
	Replicas  *int
	Cache     string
	Env       map[string]string
	Links     []*LinkSpec
	DependsOn []string
}

// LinkSpec declares a connection from one service to another: the target's
// endpoint address lands in the declaring service's environment under Env.
type LinkSpec struct {
	Service  string
	Env      string
	Protocol string
}

// NamespaceSpec declares a service discovery namespace with DNS
// registrations for services.
type NamespaceSpec struct {
	Name          string
	Domain        string
	Registrations []*RegistrationSpec
	DependsOn     []string
}

// RegistrationSpec maps one DNS label inside a namespace to a service.
type RegistrationSpec struct {
	Service string
	DNS     string
}

// AutoscalerSpec declares a scaling policy attached to a single service.
type AutoscalerSpec struct {
	Name        string
	Service     string
	MinReplicas int
	MaxReplicas int
	Steps       []*StepSpec
	DependsOn   []string
}

// StepSpec is one row of an autoscaler's step table. A nil bound leaves that
// side open; bounds are inclusive.
type StepSpec struct {
	LowerBound *float64
	UpperBound *float64
	Delta      int
}

// Engine and port defaults for caches. The port default follows the engine.
const (
	DefaultCacheEngine   = "redis"
	defaultRedisPort     = 6379
	defaultMemcachedPort = 11211
)

// DefaultLinkProtocol is assumed for links that do not name a protocol.
const DefaultLinkProtocol = "http"

// ApplyDefaults fills in the optional fields loaders leave empty. It is
// called once per loaded document, after merging, before validation.
func (d *Document) ApplyDefaults() {
	for _, c := range d.Caches {
		if c.Engine == "" {
			c.Engine = DefaultCacheEngine
		}
		if c.Port == 0 {
			switch c.Engine {
			case "memcached":
				c.Port = defaultMemcachedPort
			default:
				c.Port = defaultRedisPort
			}
		}
	}
	for _, s := range d.Services {
		if s.Replicas == nil {
			one := 1
			s.Replicas = &one
		}
		for _, l := range s.Links {
			if l.Protocol == "" {
				l.Protocol = DefaultLinkProtocol
			}
		}
	}
}
