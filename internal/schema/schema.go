// Package schema defines the Go structs that mirror the HCL scenario file
// structure, annotated for decoding with gohcl. The hcl loader decodes files
// into these structs and translates them into the format-agnostic
// config.Model.
package schema

import "github.com/hashicorp/hcl/v2"

// Root mirrors the top level of a scenario file. A file may carry any mix
// of template, domain and run blocks; the loader merges roots from every
// file it reads.
type Root struct {
	Templates []*Template `hcl:"template,block"`
	Domain    *Domain     `hcl:"domain,block"`
	Run       *Run        `hcl:"run,block"`
}

// Template mirrors a `template "name" { ... }` block.
type Template struct {
	Name  string  `hcl:"name,label"`
	Nodes []*Node `hcl:"node,block"`
	Links []*Link `hcl:"link,block"`
}

// Node mirrors a `node "name" { ... }` block inside a template. Tags stays
// an undecoded expression so that authors may write numbers as well as
// strings for tag values; the loader converts each value to a string.
type Node struct {
	Name  string         `hcl:"name,label"`
	Model string         `hcl:"model"`
	Tags  hcl.Expression `hcl:"tags,optional"`
}

// Link mirrors a `link { ... }` block inside a template.
type Link struct {
	From   string `hcl:"from"`
	Output string `hcl:"output"`
	To     string `hcl:"to"`
	Input  string `hcl:"input"`
}

// Domain mirrors the `domain { ... }` block.
type Domain struct {
	Rows           int           `hcl:"rows"`
	Cols           int           `hcl:"cols"`
	FlowDirections []int         `hcl:"flow_directions"`
	Template       string        `hcl:"template"`
	Connections    []*Connection `hcl:"connection,block"`
}

// Connection mirrors a `connection { ... }` block inside a domain.
type Connection struct {
	OutletModel string         `hcl:"outlet_model,optional"`
	OutletTags  hcl.Expression `hcl:"outlet_tags,optional"`
	OutletPort  string         `hcl:"outlet_port"`
	InletModel  string         `hcl:"inlet_model,optional"`
	InletTags   hcl.Expression `hcl:"inlet_tags,optional"`
	InletPort   string         `hcl:"inlet_port"`
}

// Run mirrors the `run { ... }` block.
type Run struct {
	Timesteps int        `hcl:"timesteps"`
	Forcings  []*Forcing `hcl:"forcing,block"`
	Records   []*Record  `hcl:"record,block"`
}

// Forcing mirrors a `forcing { ... }` block inside a run.
type Forcing struct {
	Port  string  `hcl:"port"`
	Value float64 `hcl:"value"`
	Model string  `hcl:"model,optional"`
}

// Record mirrors a `record "name" { ... }` block inside a run.
type Record struct {
	Name  string         `hcl:"name,label"`
	Model string         `hcl:"model,optional"`
	Tags  hcl.Expression `hcl:"tags,optional"`
	Port  string         `hcl:"port"`
}
