package topology

import (
	"context"
	"fmt"

	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/graph"
)

// Connection designates which node of a unit feeds which node of its
// downstream neighbor. Outlet and Inlet are match predicates evaluated
// together with the respective unit's tags and must resolve to exactly one
// node each, e.g. {_model: Muskingum} or
// {process: ConstituentRouting, constituent: Sediment}.
type Connection struct {
	Outlet     graph.Tags
	OutletPort string
	Inlet      graph.Tags
	InletPort  string
}

// Link adds one link per connection for every pair that drains inside the
// domain: the unit's outlet node to the downstream unit's inlet node.
// Boundary pairs are skipped. A predicate resolving to zero or several
// nodes fails with the underlying UnknownNodeError or AmbiguousNodeError,
// wrapped with the unit's tags.
func Link(ctx context.Context, g *graph.Graph, pairs []Pair, conns []Connection) error {
	logger := ctxlog.FromContext(ctx)

	added := 0
	for _, p := range pairs {
		if p.Downstream == nil {
			continue
		}
		for _, conn := range conns {
			src, err := matchEndpoint(g, p.Unit, conn.Outlet)
			if err != nil {
				return fmt.Errorf("resolve outlet of unit %s: %w", p.Unit, err)
			}
			dst, err := matchEndpoint(g, p.Downstream, conn.Inlet)
			if err != nil {
				return fmt.Errorf("resolve inlet of unit %s: %w", p.Downstream, err)
			}
			if err := g.AddLink(src, conn.OutletPort, dst, conn.InletPort); err != nil {
				return fmt.Errorf("link unit %s to %s: %w", p.Unit, p.Downstream, err)
			}
			added++
		}
	}

	logger.Debug("Cross-unit link resolution complete.",
		"pair_count", len(pairs),
		"connection_count", len(conns),
		"links_added", added)
	return nil
}

func matchEndpoint(g *graph.Graph, unit, predicates graph.Tags) (graph.NodeRef, error) {
	merged, conflict := unit.Merge(predicates)
	if conflict != "" {
		return -1, fmt.Errorf("connection predicate key %q collides with unit tags %s", conflict, unit)
	}
	return g.MatchOne(merged)
}
