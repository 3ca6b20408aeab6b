package config

// Model is the unified, format-agnostic representation of a scenario. It is
// assembled by a Loader from one or more configuration files and consumed by
// the builder.
type Model struct {
	// Templates holds every template definition, keyed by template name.
	Templates map[string]*Template

	// Domain describes the spatial grid the templates are stamped onto.
	// A nil Domain means the scenario only declares templates.
	Domain *Domain

	// Run holds the execution settings. A nil Run means the scenario is
	// structural only and cannot be simulated.
	Run *Run
}

// Template is a reusable blueprint: a set of node specs plus the links
// between them, addressed by node name local to the template.
type Template struct {
	Name  string
	Nodes []*Node
	Links []*Link
}

// Node declares one node inside a template: its local name, the model kind
// it runs, and the identity tags it carries.
type Node struct {
	Name  string
	Model string
	Tags  map[string]string
}

// Link connects an output port of one template node to an input port of
// another, both addressed by local node name.
type Link struct {
	From   string
	Output string
	To     string
	Input  string
}

// Domain describes the simulated area: a row-major grid of cells, the flow
// direction of each cell, the template stamped onto every cell, and the
// connections that route values between neighbouring cells.
type Domain struct {
	Rows           int
	Cols           int
	FlowDirections []int
	Template       string
	Connections    []*Connection
}

// Connection selects one node inside an upstream cell (by model kind plus
// optional tags) and one inside its downstream cell, and names the ports to
// join between them.
type Connection struct {
	OutletModel string
	OutletTags  map[string]string
	OutletPort  string
	InletModel  string
	InletTags   map[string]string
	InletPort   string
}

// Run holds the execution settings of a scenario.
type Run struct {
	Timesteps int
	Forcings  []*Forcing
	Records   []*Record
}

// Forcing applies a constant value to an input port each timestep. When
// Model is set, only nodes of that kind receive the value.
type Forcing struct {
	Port  string
	Value float64
	Model string
}

// Record declares a time series to capture: the output port of a single
// node selected by model kind plus tags.
type Record struct {
	Name  string
	Model string
	Tags  map[string]string
	Port  string
}

// NewModel returns an empty model with its maps initialised.
func NewModel() *Model {
	return &Model{Templates: make(map[string]*Template)}
}
