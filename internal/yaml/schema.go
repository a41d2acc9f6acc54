package yaml

import (
	"github.com/weftlabs/weft/internal/config"
)

// yamlDocument mirrors the declaration file layout. Fields carry both tag
// forms so the structs work with yaml directly and with mapstructure over
// the raw map.
type yamlDocument struct {
	Networks    []yamlNetwork    `mapstructure:"networks" yaml:"networks"`
	Caches      []yamlCache      `mapstructure:"caches" yaml:"caches"`
	Services    []yamlService    `mapstructure:"services" yaml:"services"`
	Namespaces  []yamlNamespace  `mapstructure:"namespaces" yaml:"namespaces"`
	Autoscalers []yamlAutoscaler `mapstructure:"autoscalers" yaml:"autoscalers"`
}

type yamlNetwork struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	CIDR      string   `mapstructure:"cidr" yaml:"cidr"`
	Zone      string   `mapstructure:"zone" yaml:"zone"`
	DependsOn []string `mapstructure:"depends_on" yaml:"depends_on"`
}

type yamlCache struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Network    string   `mapstructure:"network" yaml:"network"`
	Engine     string   `mapstructure:"engine" yaml:"engine"`
	CapacityGB int      `mapstructure:"capacity_gb" yaml:"capacity_gb"`
	Port       int      `mapstructure:"port" yaml:"port"`
	DependsOn  []string `mapstructure:"depends_on" yaml:"depends_on"`
}

type yamlService struct {
	Name      string            `mapstructure:"name" yaml:"name"`
	Network   string            `mapstructure:"network" yaml:"network"`
	Image     string            `mapstructure:"image" yaml:"image"`
	Port      int               `mapstructure:"port" yaml:"port"`
	Replicas  *int              `mapstructure:"replicas" yaml:"replicas"`
	Cache     string            `mapstructure:"cache" yaml:"cache"`
	Env       map[string]string `mapstructure:"env" yaml:"env"`
	Links     []yamlLink        `mapstructure:"links" yaml:"links"`
	DependsOn []string          `mapstructure:"depends_on" yaml:"depends_on"`
}

type yamlLink struct {
	Service  string `mapstructure:"service" yaml:"service"`
	Env      string `mapstructure:"env" yaml:"env"`
	Protocol string `mapstructure:"protocol" yaml:"protocol"`
}

type yamlNamespace struct {
	Name          string             `mapstructure:"name" yaml:"name"`
	Domain        string             `mapstructure:"domain" yaml:"domain"`
	Registrations []yamlRegistration `mapstructure:"registrations" yaml:"registrations"`
	DependsOn     []string           `mapstructure:"depends_on" yaml:"depends_on"`
}

type yamlRegistration struct {
	Service string `mapstructure:"service" yaml:"service"`
	DNS     string `mapstructure:"dns" yaml:"dns"`
}

type yamlAutoscaler struct {
	Name        string     `mapstructure:"name" yaml:"name"`
	Service     string     `mapstructure:"service" yaml:"service"`
	MinReplicas int        `mapstructure:"min_replicas" yaml:"min_replicas"`
	MaxReplicas int        `mapstructure:"max_replicas" yaml:"max_replicas"`
	Steps       []yamlStep `mapstructure:"steps" yaml:"steps"`
	DependsOn   []string   `mapstructure:"depends_on" yaml:"depends_on"`
}

type yamlStep struct {
	LowerBound *float64 `mapstructure:"lower_bound" yaml:"lower_bound"`
	UpperBound *float64 `mapstructure:"upper_bound" yaml:"upper_bound"`
	Delta      int      `mapstructure:"delta" yaml:"delta"`
}

func translateDocument(raw *yamlDocument) *config.Document {
	doc := config.NewDocument()

	for _, n := range raw.Networks {
		doc.Networks = append(doc.Networks, &config.NetworkSpec{
			Name:      n.Name,
			CIDR:      n.CIDR,
			Zone:      n.Zone,
			DependsOn: n.DependsOn,
		})
	}

	for _, c := range raw.Caches {
		doc.Caches = append(doc.Caches, &config.CacheSpec{
			Name:       c.Name,
			Network:    c.Network,
			Engine:     c.Engine,
			CapacityGB: c.CapacityGB,
			Port:       c.Port,
			DependsOn:  c.DependsOn,
		})
	}

	for _, s := range raw.Services {
		spec := &config.ServiceSpec{
			Name:      s.Name,
			Network:   s.Network,
			Image:     s.Image,
			Port:      s.Port,
			Replicas:  s.Replicas,
			Cache:     s.Cache,
			Env:       s.Env,
			DependsOn: s.DependsOn,
		}
		for _, l := range s.Links {
			spec.Links = append(spec.Links, &config.LinkSpec{
				Service:  l.Service,
				Env:      l.Env,
				Protocol: l.Protocol,
			})
		}
		doc.Services = append(doc.Services, spec)
	}

	for _, n := range raw.Namespaces {
		spec := &config.NamespaceSpec{
			Name:      n.Name,
			Domain:    n.Domain,
			DependsOn: n.DependsOn,
		}
		for _, r := range n.Registrations {
			spec.Registrations = append(spec.Registrations, &config.RegistrationSpec{
				Service: r.Service,
				DNS:     r.DNS,
			})
		}
		doc.Namespaces = append(doc.Namespaces, spec)
	}

	for _, a := range raw.Autoscalers {
		spec := &config.AutoscalerSpec{
			Name:        a.Name,
			Service:     a.Service,
			MinReplicas: a.MinReplicas,
			MaxReplicas: a.MaxReplicas,
			DependsOn:   a.DependsOn,
		}
		for _, s := range a.Steps {
			spec.Steps = append(spec.Steps, &config.StepSpec{
				LowerBound: s.LowerBound,
				UpperBound: s.UpperBound,
				Delta:      s.Delta,
			})
		}
		doc.Autoscalers = append(doc.Autoscalers, spec)
	}

	return doc
}
