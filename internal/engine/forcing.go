package engine

import "github.com/ConnectedSystems/openwater/internal/graph"

// Forcing supplies externally driven input values, typically climate series
// feeding ports that no link covers. Value reports whether a contribution
// exists for the given step, node and input port.
type Forcing interface {
	Value(step int, node graph.Node, port string) (float64, bool)
}

// ForcingFunc adapts a function to the Forcing interface.
type ForcingFunc func(step int, node graph.Node, port string) (float64, bool)

// Value implements Forcing.
func (f ForcingFunc) Value(step int, node graph.Node, port string) (float64, bool) {
	return f(step, node, port)
}

// ConstantForcing feeds every node the same value on the named ports, a
// convenient driver for synthetic runs.
type ConstantForcing map[string]float64

// Value implements Forcing.
func (c ConstantForcing) Value(_ int, _ graph.Node, port string) (float64, bool) {
	v, ok := c[port]
	return v, ok
}
