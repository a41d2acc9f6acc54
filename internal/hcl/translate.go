package hcl

import (
	"github.com/weftlabs/weft/internal/config"
)

// translateDocument maps one decoded file onto the config model. The
// mapping is mechanical; no validation happens here.
func translateDocument(root *documentFile) *config.Document {
	doc := config.NewDocument()

	for _, b := range root.Networks {
		doc.Networks = append(doc.Networks, &config.NetworkSpec{
			Name:      b.Name,
			CIDR:      b.CIDR,
			Zone:      b.Zone,
			DependsOn: b.DependsOn,
		})
	}

	for _, b := range root.Caches {
		doc.Caches = append(doc.Caches, &config.CacheSpec{
			Name:       b.Name,
			Network:    b.Network,
			Engine:     b.Engine,
			CapacityGB: b.CapacityGB,
			Port:       b.Port,
			DependsOn:  b.DependsOn,
		})
	}

	for _, b := range root.Services {
		spec := &config.ServiceSpec{
			Name:      b.Name,
			Network:   b.Network,
			Image:     b.Image,
			Port:      b.Port,
			Replicas:  b.Replicas,
			Cache:     b.Cache,
			Env:       b.Env,
			DependsOn: b.DependsOn,
		}
		for _, link := range b.Links {
			spec.Links = append(spec.Links, &config.LinkSpec{
				Service:  link.Service,
				Env:      link.Env,
				Protocol: link.Protocol,
			})
		}
		doc.Services = append(doc.Services, spec)
	}

	for _, b := range root.Namespaces {
		spec := &config.NamespaceSpec{
			Name:      b.Name,
			Domain:    b.Domain,
			DependsOn: b.DependsOn,
		}
		for _, reg := range b.Registrations {
			spec.Registrations = append(spec.Registrations, &config.RegistrationSpec{
				Service: reg.Service,
				DNS:     reg.DNS,
			})
		}
		doc.Namespaces = append(doc.Namespaces, spec)
	}

	for _, b := range root.Autoscalers {
		spec := &config.AutoscalerSpec{
			Name:        b.Name,
			Service:     b.Service,
			MinReplicas: b.MinReplicas,
			MaxReplicas: b.MaxReplicas,
			DependsOn:   b.DependsOn,
		}
		for _, step := range b.Steps {
			spec.Steps = append(spec.Steps, &config.StepSpec{
				LowerBound: step.LowerBound,
				UpperBound: step.UpperBound,
				Delta:      step.Delta,
			})
		}
		doc.Autoscalers = append(doc.Autoscalers, spec)
	}

	return doc
}
