package hcloud

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// api is the slice of the Hetzner Cloud surface the backend needs. Tests
// substitute a fake; production uses realAPI.
type api interface {
	EnsureNetwork(ctx context.Context, name, cidr, zone string, labels map[string]string) (string, error)
	EnsureServer(ctx context.Context, name, serverType, networkName string, labels map[string]string) (string, error)
	EnsureLoadBalancer(ctx context.Context, name, networkName string, port int, labels map[string]string) (string, error)
}

// serverImage is the OS image cache servers boot from.
const serverImage = "debian-12"

// loadBalancerType is the smallest balancer tier; services share it.
const loadBalancerType = "lb11"

// realAPI adapts *hcloud.Client to the api interface. Every Ensure method
// is get-then-create, so re-applying a plan converges instead of colliding
// with resources from the previous run.
type realAPI struct {
	client *hcloud.Client
}

func newRealAPI(token string) *realAPI {
	return &realAPI{client: hcloud.NewClient(hcloud.WithToken(token))}
}

func (a *realAPI) EnsureNetwork(ctx context.Context, name, cidr, zone string, labels map[string]string) (string, error) {
	network, _, err := a.client.Network.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get network %s: %w", name, err)
	}

	if network == nil {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return "", fmt.Errorf("invalid ip range %s: %w", cidr, err)
		}
		network, _, err = a.client.Network.Create(ctx, hcloud.NetworkCreateOpts{
			Name:    name,
			IPRange: ipNet,
			Labels:  labels,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create network %s: %w", name, err)
		}
	}

	if err := a.ensureSubnet(ctx, network, cidr, zone); err != nil {
		return "", err
	}
	return strconv.FormatInt(network.ID, 10), nil
}

// ensureSubnet gives the network one cloud subnet spanning its whole range.
// Servers and balancers cannot attach to a network without a subnet.
func (a *realAPI) ensureSubnet(ctx context.Context, network *hcloud.Network, cidr, zone string) error {
	for _, subnet := range network.Subnets {
		if subnet.IPRange != nil && subnet.IPRange.String() == cidr {
			return nil
		}
	}

	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid subnet ip range %s: %w", cidr, err)
	}
	action, _, err := a.client.Network.AddSubnet(ctx, network, hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: hcloud.NetworkZone(zone),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add subnet to network %s: %w", network.Name, err)
	}
	if err := a.client.Action.WaitFor(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for subnet creation: %w", err)
	}
	return nil
}

func (a *realAPI) EnsureServer(ctx context.Context, name, serverType, networkName string, labels map[string]string) (string, error) {
	server, _, err := a.client.Server.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get server %s: %w", name, err)
	}
	if server != nil {
		return strconv.FormatInt(server.ID, 10), nil
	}

	typeObj, _, err := a.client.ServerType.Get(ctx, serverType)
	if err != nil {
		return "", fmt.Errorf("failed to get server type %s: %w", serverType, err)
	}
	if typeObj == nil {
		return "", fmt.Errorf("server type not found: %s", serverType)
	}

	imageObj, _, err := a.client.Image.GetForArchitecture(ctx, serverImage, typeObj.Architecture)
	if err != nil {
		return "", fmt.Errorf("failed to get image %s: %w", serverImage, err)
	}
	if imageObj == nil {
		return "", fmt.Errorf("image not found: %s", serverImage)
	}

	network, err := a.getNetwork(ctx, networkName)
	if err != nil {
		return "", err
	}

	result, _, err := a.client.Server.Create(ctx, hcloud.ServerCreateOpts{
		Name:       name,
		ServerType: typeObj,
		Image:      imageObj,
		Networks:   []*hcloud.Network{network},
		Labels:     labels,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create server %s: %w", name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := a.client.Action.WaitFor(ctx, actions...); err != nil {
		return "", fmt.Errorf("failed to wait for server creation: %w", err)
	}
	return strconv.FormatInt(result.Server.ID, 10), nil
}

func (a *realAPI) EnsureLoadBalancer(ctx context.Context, name, networkName string, port int, labels map[string]string) (string, error) {
	lb, _, err := a.client.LoadBalancer.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get load balancer %s: %w", name, err)
	}
	if lb != nil {
		return strconv.FormatInt(lb.ID, 10), nil
	}

	lbType, _, err := a.client.LoadBalancerType.Get(ctx, loadBalancerType)
	if err != nil {
		return "", fmt.Errorf("failed to get load balancer type %s: %w", loadBalancerType, err)
	}
	network, err := a.getNetwork(ctx, networkName)
	if err != nil {
		return "", err
	}

	zone := hcloud.NetworkZoneEUCentral
	if len(network.Subnets) > 0 {
		zone = network.Subnets[0].NetworkZone
	}

	result, _, err := a.client.LoadBalancer.Create(ctx, hcloud.LoadBalancerCreateOpts{
		Name:             name,
		LoadBalancerType: lbType,
		Algorithm:        &hcloud.LoadBalancerAlgorithm{Type: hcloud.LoadBalancerAlgorithmTypeRoundRobin},
		NetworkZone:      zone,
		Network:          network,
		Services: []hcloud.LoadBalancerCreateOptsService{{
			Protocol:        hcloud.LoadBalancerServiceProtocolTCP,
			ListenPort:      hcloud.Ptr(port),
			DestinationPort: hcloud.Ptr(port),
		}},
		Labels: labels,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create load balancer %s: %w", name, err)
	}
	if err := a.client.Action.WaitFor(ctx, result.Action); err != nil {
		return "", fmt.Errorf("failed to wait for load balancer creation: %w", err)
	}
	return strconv.FormatInt(result.LoadBalancer.ID, 10), nil
}

func (a *realAPI) getNetwork(ctx context.Context, name string) (*hcloud.Network, error) {
	network, _, err := a.client.Network.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get network %s: %w", name, err)
	}
	if network == nil {
		return nil, fmt.Errorf("network not found: %s", name)
	}
	return network, nil
}
