// Package endpoint maps producer resources to consumable addresses.
//
// A Resolver answers "how do I reach resource X over protocol P" against one
// topology. Resolution is a pure function of the topology's contents, so the
// resolver memoizes every successful answer for its lifetime; a resolver is
// created per topology build and discarded with it.
package endpoint

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/weftlabs/weft/internal/topology"
)

// Protocols producers can be asked for.
const (
	ProtocolHTTP         = "http"
	ProtocolCache        = "cache"
	ProtocolDiscoveryDNS = "discovery-dns"
)

// ErrUnsupportedProtocol is returned when the producer exists but its kind
// cannot serve the requested protocol.
var ErrUnsupportedProtocol = errors.New("unsupported protocol")

// Descriptor is a resolved endpoint: the address a consumer can use to reach
// the producer over the protocol.
type Descriptor struct {
	Producer string
	Protocol string
	Address  string
}

// Resolver resolves endpoints against a single topology.
type Resolver struct {
	topo *topology.Topology

	mutex sync.Mutex
	cache map[cacheKey]Descriptor
}

type cacheKey struct {
	producer string
	protocol string
}

// NewResolver returns a resolver bound to the given topology.
func NewResolver(topo *topology.Topology) *Resolver {
	return &Resolver{
		topo:  topo,
		cache: make(map[cacheKey]Descriptor),
	}
}

// Resolve returns the endpoint descriptor for the named producer over the
// given protocol. It fails with topology.ErrUnknownNode if no such producer
// exists and with ErrUnsupportedProtocol if the producer's kind cannot serve
// the protocol. Repeated calls with the same arguments return the same
// descriptor.
func (r *Resolver) Resolve(producer, protocol string) (Descriptor, error) {
	key := cacheKey{producer: producer, protocol: protocol}

	r.mutex.Lock()
	cached, ok := r.cache[key]
	r.mutex.Unlock()
	if ok {
		return cached, nil
	}

	node, ok := r.topo.Node(producer)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", topology.ErrUnknownNode, producer)
	}

	address, err := r.addressFor(node, protocol)
	if err != nil {
		return Descriptor{}, err
	}

	desc := Descriptor{Producer: producer, Protocol: protocol, Address: address}
	r.mutex.Lock()
	r.cache[key] = desc
	r.mutex.Unlock()
	return desc, nil
}

func (r *Resolver) addressFor(node *topology.ResourceNode, protocol string) (string, error) {
	switch payload := node.Payload().(type) {
	case *topology.CachePayload:
		if protocol == ProtocolCache {
			return fmt.Sprintf("%s://%s:%d", payload.Engine, node.Name(), payload.Port), nil
		}
	case *topology.ServicePayload:
		switch protocol {
		case ProtocolHTTP:
			return fmt.Sprintf("http://%s:%d", node.Name(), payload.Port), nil
		case ProtocolDiscoveryDNS:
			return r.discoveryName(node.Name())
		}
	case *topology.NamespacePayload:
		if protocol == ProtocolDiscoveryDNS {
			return payload.Domain, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q cannot serve %q", ErrUnsupportedProtocol, node.Kind(), node.Name(), protocol)
}

// discoveryName finds the first namespace registration for the service and
// returns its fully qualified name. Namespaces are scanned in topology
// insertion order; within a namespace the lexically smallest label wins, so
// resolution stays deterministic.
func (r *Resolver) discoveryName(service string) (string, error) {
	for node := range r.topo.Nodes() {
		ns, ok := node.Payload().(*topology.NamespacePayload)
		if !ok {
			continue
		}
		var labels []string
		for label, registered := range ns.Records {
			if registered == service {
				labels = append(labels, label)
			}
		}
		if len(labels) > 0 {
			sort.Strings(labels)
			return labels[0] + "." + ns.Domain, nil
		}
	}
	return "", fmt.Errorf("%w: service %q is not registered in any namespace", ErrUnsupportedProtocol, service)
}
