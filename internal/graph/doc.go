// Package graph holds the instantiated simulation structure: an arena of
// typed, tagged nodes plus the directed, port-addressed links between them.
//
// Nodes are owned by the Graph and referred to by opaque NodeRef handles.
// Identity is structural: a node is its model kind plus its full tag set,
// and the arena enforces uniqueness over that identity. Links name the
// source output port and the destination input port; several links arriving
// at one input port mean their values are summed at evaluation time.
//
// Construction is a single-goroutine affair. Once built, all read methods
// are safe for concurrent use, which is what the staged executor relies on.
package graph
