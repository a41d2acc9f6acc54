package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/topology"
)

// Validate loads the declarations at configPath and builds the full
// topology from them, so every configuration violation and every graph
// problem surfaces, without emitting a plan or touching a backend.
func Validate(ctx context.Context, outW io.Writer, configPath string) error {
	loader, err := selectLoader(configPath)
	if err != nil {
		return err
	}

	doc, err := loader.Load(ctx, configPath)
	if err != nil {
		return cli.Validation(err)
	}

	topo, err := builder.BuildTopology(ctx, doc)
	if err != nil {
		return cli.Classify(err)
	}

	perKind := make(map[topology.Kind]int)
	for node := range topo.Nodes() {
		perKind[node.Kind()]++
	}

	fmt.Fprintf(outW, "Declarations valid: %d resources\n", topo.Len())
	for _, kind := range []topology.Kind{
		topology.KindNetwork,
		topology.KindCache,
		topology.KindService,
		topology.KindNamespace,
		topology.KindAutoscaler,
	} {
		if n := perKind[kind]; n > 0 {
			fmt.Fprintf(outW, "  %-10s %d\n", kind, n)
		}
	}
	return nil
}
