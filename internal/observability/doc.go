// Package observability bundles the Prometheus metrics and OpenTelemetry
// tracing plumbing for simulation runs. Both are optional: a nil collector
// and a disabled tracing provider are safe to use everywhere.
package observability
