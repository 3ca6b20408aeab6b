package graph

import (
	"errors"
	"fmt"
)

// Port directions, used in InvalidPortError and registry lookups.
const (
	PortInput  = "input"
	PortOutput = "output"
)

// ErrReservedTagKey is returned when a user tag set contains the reserved
// "_model" key.
var ErrReservedTagKey = errors.New(`tag key "_model" is reserved`)

// DuplicateNodeError reports an attempt to add a node whose identity (model
// kind plus tag set) is already present.
type DuplicateNodeError struct {
	Kind string
	Tags Tags
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node: model %q with tags %s already exists", e.Kind, e.Tags)
}

// UnknownNodeError reports a reference to a node that is not in the graph,
// either by a ref from another arena or by a predicate set that matched
// nothing.
type UnknownNodeError struct {
	Ref        NodeRef // -1 when the lookup was by predicate
	Predicates Tags    // nil when the lookup was by ref
}

func (e *UnknownNodeError) Error() string {
	if e.Predicates != nil {
		return fmt.Sprintf("no node matches %s", e.Predicates)
	}
	return fmt.Sprintf("unknown node ref %d", e.Ref)
}

// InvalidPortError reports a link endpoint naming a port its model kind
// does not declare.
type InvalidPortError struct {
	Kind      string
	Port      string
	Direction string // PortInput or PortOutput
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("model %q declares no %s port %q", e.Kind, e.Direction, e.Port)
}

// AmbiguousNodeError reports a single-node query that matched more than one
// node.
type AmbiguousNodeError struct {
	Predicates Tags
	Refs       []NodeRef
}

func (e *AmbiguousNodeError) Error() string {
	return fmt.Sprintf("%d nodes match %s, want exactly one", len(e.Refs), e.Predicates)
}
