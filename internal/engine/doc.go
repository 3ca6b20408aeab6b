// Package engine drives a compiled plan over time. Each timestep walks the
// plan's stages in order; within a stage every node's kernel is evaluated
// by a bounded worker pool, reading upstream outputs produced by earlier
// stages of the same step. Output values live in one flat slab with a slot
// per (node, output port), so parallel writes never contend.
//
// Inputs aggregate by summation: every link arriving at an input port
// contributes its source value, plus whatever the forcing supplies for that
// port. Kernels keep their own state between steps.
package engine
