package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// localsFile is the first-pass schema: it captures locals blocks and
// leaves everything else undecoded, so resource attributes that reference
// local values are not evaluated before the context exists.
type localsFile struct {
	Locals []*localsBlock `hcl:"locals,block"`
	Remain hcl.Body       `hcl:",remain"`
}

type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// documentFile is the second-pass schema covering every block a
// declaration file may contain. Resource attributes are optional here;
// the builders report missing fields, so one run surfaces all of them
// instead of the first one the decoder trips over.
type documentFile struct {
	Locals      []*localsBlock     `hcl:"locals,block"`
	Networks    []*networkBlock    `hcl:"network,block"`
	Caches      []*cacheBlock      `hcl:"cache,block"`
	Services    []*serviceBlock    `hcl:"service,block"`
	Namespaces  []*namespaceBlock  `hcl:"namespace,block"`
	Autoscalers []*autoscalerBlock `hcl:"autoscaler,block"`
}

type networkBlock struct {
	Name      string   `hcl:"name,label"`
	CIDR      string   `hcl:"cidr,optional"`
	Zone      string   `hcl:"zone,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
}

type cacheBlock struct {
	Name       string   `hcl:"name,label"`
	Network    string   `hcl:"network,optional"`
	Engine     string   `hcl:"engine,optional"`
	CapacityGB int      `hcl:"capacity_gb,optional"`
	Port       int      `hcl:"port,optional"`
	DependsOn  []string `hcl:"depends_on,optional"`
}

type serviceBlock struct {
	Name      string            `hcl:"name,label"`
	Network   string            `hcl:"network,optional"`
	Image     string            `hcl:"image,optional"`
	Port      int               `hcl:"port,optional"`
	Replicas  *int              `hcl:"replicas,optional"`
	Cache     string            `hcl:"cache,optional"`
	Env       map[string]string `hcl:"env,optional"`
	Links     []*linkBlock      `hcl:"link,block"`
	DependsOn []string          `hcl:"depends_on,optional"`
}

// linkBlock's label names the target service.
type linkBlock struct {
	Service  string `hcl:"service,label"`
	Env      string `hcl:"env,optional"`
	Protocol string `hcl:"protocol,optional"`
}

type namespaceBlock struct {
	Name          string           `hcl:"name,label"`
	Domain        string           `hcl:"domain,optional"`
	Registrations []*registerBlock `hcl:"register,block"`
	DependsOn     []string         `hcl:"depends_on,optional"`
}

// registerBlock's label names the registered service.
type registerBlock struct {
	Service string `hcl:"service,label"`
	DNS     string `hcl:"dns,optional"`
}

type autoscalerBlock struct {
	Name        string       `hcl:"name,label"`
	Service     string       `hcl:"service,optional"`
	MinReplicas int          `hcl:"min_replicas,optional"`
	MaxReplicas int          `hcl:"max_replicas,optional"`
	Steps       []*stepBlock `hcl:"step,block"`
	DependsOn   []string     `hcl:"depends_on,optional"`
}

type stepBlock struct {
	LowerBound *float64 `hcl:"lower_bound,optional"`
	UpperBound *float64 `hcl:"upper_bound,optional"`
	Delta      int      `hcl:"delta,optional"`
}
