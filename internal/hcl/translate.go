package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/schema"
)

func translateTemplate(s *schema.Template) (*config.Template, error) {
	tpl := &config.Template{Name: s.Name}

	for _, n := range s.Nodes {
		tags, err := decodeTags(n.Tags, fmt.Sprintf("template '%s' node '%s' tags", s.Name, n.Name))
		if err != nil {
			return nil, err
		}
		tpl.Nodes = append(tpl.Nodes, &config.Node{
			Name:  n.Name,
			Model: n.Model,
			Tags:  tags,
		})
	}

	for _, l := range s.Links {
		tpl.Links = append(tpl.Links, &config.Link{
			From:   l.From,
			Output: l.Output,
			To:     l.To,
			Input:  l.Input,
		})
	}

	return tpl, nil
}

func translateDomain(s *schema.Domain) (*config.Domain, error) {
	domain := &config.Domain{
		Rows:           s.Rows,
		Cols:           s.Cols,
		FlowDirections: s.FlowDirections,
		Template:       s.Template,
	}

	for i, c := range s.Connections {
		outletTags, err := decodeTags(c.OutletTags, fmt.Sprintf("connection %d outlet_tags", i))
		if err != nil {
			return nil, err
		}
		inletTags, err := decodeTags(c.InletTags, fmt.Sprintf("connection %d inlet_tags", i))
		if err != nil {
			return nil, err
		}
		domain.Connections = append(domain.Connections, &config.Connection{
			OutletModel: c.OutletModel,
			OutletTags:  outletTags,
			OutletPort:  c.OutletPort,
			InletModel:  c.InletModel,
			InletTags:   inletTags,
			InletPort:   c.InletPort,
		})
	}

	return domain, nil
}

func translateRun(s *schema.Run) (*config.Run, error) {
	run := &config.Run{Timesteps: s.Timesteps}

	for _, f := range s.Forcings {
		run.Forcings = append(run.Forcings, &config.Forcing{
			Port:  f.Port,
			Value: f.Value,
			Model: f.Model,
		})
	}

	for _, r := range s.Records {
		tags, err := decodeTags(r.Tags, fmt.Sprintf("record '%s' tags", r.Name))
		if err != nil {
			return nil, err
		}
		run.Records = append(run.Records, &config.Record{
			Name:  r.Name,
			Model: r.Model,
			Tags:  tags,
			Port:  r.Port,
		})
	}

	return run, nil
}

// decodeTags evaluates a tags expression into a string map. Tag values may
// be written as strings, numbers or bools; every value is converted to its
// string form.
func decodeTags(expr hcl.Expression, what string) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating %s: %w", what, diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%s must be a map of tag values, got %s", what, ty.FriendlyName())
	}
	if val.LengthInt() == 0 {
		return nil, nil
	}

	tags := make(map[string]string, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key := k.AsString()
		if v.IsNull() {
			return nil, fmt.Errorf("%s: tag '%s' is null", what, key)
		}
		converted, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("%s: tag '%s': %w", what, key, err)
		}
		tags[key] = converted.AsString()
	}

	return tags, nil
}
