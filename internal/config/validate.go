package config

import (
	"fmt"
	"strings"
)

// Validate performs a strict consistency check over the whole model:
// template nodes must be well-formed and uniquely named, links must refer to
// declared nodes, the domain grid must be fully described and reference a
// known template, and run settings must be usable. Loaders run it once after
// merging all sources.
func (m *Model) Validate() error {
	var errs []string

	for name, tpl := range m.Templates {
		errs = append(errs, tpl.validate(name)...)
	}

	if m.Domain != nil {
		errs = append(errs, m.Domain.validate(m.Templates)...)
	}

	if m.Run != nil {
		errs = append(errs, m.Run.validate()...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("scenario validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (t *Template) validate(name string) []string {
	var errs []string

	nodes := make(map[string]struct{}, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Name == "" {
			errs = append(errs, fmt.Sprintf("template '%s': node with empty name", name))
			continue
		}
		if n.Model == "" {
			errs = append(errs, fmt.Sprintf("template '%s': node '%s' has no model", name, n.Name))
		}
		if _, dup := nodes[n.Name]; dup {
			errs = append(errs, fmt.Sprintf("template '%s': node '%s' declared twice", name, n.Name))
		}
		nodes[n.Name] = struct{}{}
	}

	for _, l := range t.Links {
		if _, ok := nodes[l.From]; !ok {
			errs = append(errs, fmt.Sprintf("template '%s': link from unknown node '%s'", name, l.From))
		}
		if _, ok := nodes[l.To]; !ok {
			errs = append(errs, fmt.Sprintf("template '%s': link to unknown node '%s'", name, l.To))
		}
		if l.Output == "" {
			errs = append(errs, fmt.Sprintf("template '%s': link %s->%s has no output port", name, l.From, l.To))
		}
		if l.Input == "" {
			errs = append(errs, fmt.Sprintf("template '%s': link %s->%s has no input port", name, l.From, l.To))
		}
	}

	return errs
}

func (d *Domain) validate(templates map[string]*Template) []string {
	var errs []string

	if d.Rows < 1 || d.Cols < 1 {
		errs = append(errs, fmt.Sprintf("domain: grid must be at least 1x1, got %dx%d", d.Rows, d.Cols))
	} else if len(d.FlowDirections) != d.Rows*d.Cols {
		errs = append(errs, fmt.Sprintf("domain: %d flow directions for a %dx%d grid, want %d",
			len(d.FlowDirections), d.Rows, d.Cols, d.Rows*d.Cols))
	}

	if d.Template == "" {
		errs = append(errs, "domain: no template named")
	} else if _, ok := templates[d.Template]; !ok {
		errs = append(errs, fmt.Sprintf("domain: unknown template '%s'", d.Template))
	}

	for i, c := range d.Connections {
		if c.OutletModel == "" && len(c.OutletTags) == 0 {
			errs = append(errs, fmt.Sprintf("domain: connection %d selects no outlet node", i))
		}
		if c.InletModel == "" && len(c.InletTags) == 0 {
			errs = append(errs, fmt.Sprintf("domain: connection %d selects no inlet node", i))
		}
		if c.OutletPort == "" || c.InletPort == "" {
			errs = append(errs, fmt.Sprintf("domain: connection %d must name both ports", i))
		}
	}

	return errs
}

func (r *Run) validate() []string {
	var errs []string

	if r.Timesteps < 1 {
		errs = append(errs, fmt.Sprintf("run: timesteps must be at least 1, got %d", r.Timesteps))
	}

	for i, f := range r.Forcings {
		if f.Port == "" {
			errs = append(errs, fmt.Sprintf("run: forcing %d has no port", i))
		}
	}

	names := make(map[string]struct{}, len(r.Records))
	for i, rec := range r.Records {
		if rec.Name == "" {
			errs = append(errs, fmt.Sprintf("run: record %d has no name", i))
			continue
		}
		if _, dup := names[rec.Name]; dup {
			errs = append(errs, fmt.Sprintf("run: record '%s' declared twice", rec.Name))
		}
		names[rec.Name] = struct{}{}
		if rec.Port == "" {
			errs = append(errs, fmt.Sprintf("run: record '%s' has no port", rec.Name))
		}
		if rec.Model == "" && len(rec.Tags) == 0 {
			errs = append(errs, fmt.Sprintf("run: record '%s' selects no node", rec.Name))
		}
	}

	return errs
}
