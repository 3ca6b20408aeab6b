package builder

import (
	"context"
	"fmt"

	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/template"
	"github.com/ConnectedSystems/openwater/internal/topology"
)

// stampDomain instantiates the domain's template onto every grid cell and
// resolves the cross-cell links dictated by the flow directions.
func stampDomain(ctx context.Context, g *graph.Graph, domain *config.Domain, templates map[string]*template.Template) error {
	tpl, ok := templates[domain.Template]
	if !ok {
		return fmt.Errorf("domain: unknown template '%s'", domain.Template)
	}

	grid := topology.D8Grid{Rows: domain.Rows, Cols: domain.Cols, Dirs: domain.FlowDirections}
	pairs, err := grid.Pairs()
	if err != nil {
		return err
	}

	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Cols; col++ {
			if _, err := tpl.Instantiate(g, topology.CellTags(row, col)); err != nil {
				return fmt.Errorf("stamping cell (%d,%d): %w", row, col, err)
			}
		}
	}

	conns := make([]topology.Connection, 0, len(domain.Connections))
	for _, c := range domain.Connections {
		conns = append(conns, topology.Connection{
			Outlet:     selector(c.OutletModel, c.OutletTags),
			OutletPort: c.OutletPort,
			Inlet:      selector(c.InletModel, c.InletTags),
			InletPort:  c.InletPort,
		})
	}

	return topology.Link(ctx, g, pairs, conns)
}

// selector builds the match predicates for a connection endpoint: the
// configured tags plus, when given, the model kind predicate.
func selector(model string, tags map[string]string) graph.Tags {
	predicates := graph.Tags(tags).Clone()
	if model != "" {
		predicates[graph.TagModel] = model
	}
	return predicates
}
