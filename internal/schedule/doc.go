// Package schedule compiles a finished graph into an ordered sequence of
// execution stages. The decomposition is a longest-path layering: a node's
// stage index is one more than the deepest of its predecessors, nodes
// without predecessors sit in stage 0, and every node lands in the earliest
// stage its dependencies allow. All nodes of one stage are mutually
// independent, which is what lets an executor run them concurrently and
// batch same-kind nodes together.
package schedule
