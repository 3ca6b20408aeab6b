package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/engine"
	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/registry"
	"github.com/ConnectedSystems/openwater/internal/schedule"
	"github.com/ConnectedSystems/openwater/internal/template"
)

// Result bundles everything assembled from a scenario model: the populated
// graph, its stage plan, and the run plumbing derived from the run block.
// Forcing and Probes are nil when the scenario has no run block.
type Result struct {
	Graph   *graph.Graph
	Plan    *schedule.Plan
	Forcing engine.Forcing
	Probes  []engine.Probe
}

// Build assembles a scenario model. Templates are compiled first, the
// domain grid is stamped cell by cell, cross-cell links are resolved from
// the flow directions, and the finished graph is layered into a stage plan.
// A model without a domain yields an empty graph and an empty plan.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	templates, err := compileTemplates(model)
	if err != nil {
		return nil, err
	}
	logger.Debug("Templates compiled.", "count", len(templates))

	g := graph.New(reg)
	if model.Domain != nil {
		if err := stampDomain(ctx, g, model.Domain, templates); err != nil {
			return nil, err
		}
	}
	logger.Debug("Domain stamped.", "nodes", g.NodeCount(), "links", g.LinkCount())

	plan, err := schedule.Build(ctx, g)
	if err != nil {
		return nil, err
	}
	logger.Debug("Stage plan built.", "stages", plan.StageCount(), "max_width", plan.MaxWidth())

	res := &Result{Graph: g, Plan: plan}
	if model.Run != nil {
		res.Forcing = forcingFromRun(model.Run)
		res.Probes = probesFromRun(model.Run)
	}
	return res, nil
}

// compileTemplates turns every configured template into a frozen-ready
// template value, resolving local node names into refs for the links.
func compileTemplates(model *config.Model) (map[string]*template.Template, error) {
	names := make([]string, 0, len(model.Templates))
	for name := range model.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		spec := model.Templates[name]
		tpl := template.New()

		refs := make(map[string]template.NodeRef, len(spec.Nodes))
		for _, n := range spec.Nodes {
			ref, err := tpl.AddNode(n.Model, graph.Tags(n.Tags))
			if err != nil {
				return nil, fmt.Errorf("template '%s': node '%s': %w", name, n.Name, err)
			}
			refs[n.Name] = ref
		}

		for _, l := range spec.Links {
			if err := tpl.AddLink(refs[l.From], l.Output, refs[l.To], l.Input); err != nil {
				return nil, fmt.Errorf("template '%s': link %s.%s -> %s.%s: %w",
					name, l.From, l.Output, l.To, l.Input, err)
			}
		}

		templates[name] = tpl
	}

	return templates, nil
}

// forcingFromRun folds the run's forcing blocks into a single Forcing.
// Several forcings naming the same port accumulate, like converging links.
type runForcing []*config.Forcing

// Value implements engine.Forcing.
func (r runForcing) Value(_ int, node graph.Node, port string) (float64, bool) {
	total, found := 0.0, false
	for _, f := range r {
		if f.Port != port {
			continue
		}
		if f.Model != "" && f.Model != node.Kind {
			continue
		}
		total += f.Value
		found = true
	}
	return total, found
}

func forcingFromRun(run *config.Run) engine.Forcing {
	if len(run.Forcings) == 0 {
		return nil
	}
	return runForcing(run.Forcings)
}

func probesFromRun(run *config.Run) []engine.Probe {
	probes := make([]engine.Probe, 0, len(run.Records))
	for _, rec := range run.Records {
		predicates := graph.Tags(rec.Tags).Clone()
		if rec.Model != "" {
			predicates[graph.TagModel] = rec.Model
		}
		probes = append(probes, engine.Probe{
			Name:       rec.Name,
			Predicates: predicates,
			Port:       rec.Port,
		})
	}
	return probes
}
