// Package builder assembles a scenario model into executable form. It
// compiles the configured templates, stamps the chosen template onto every
// cell of the domain grid, resolves cross-cell links from the flow
// directions and layers the finished graph into a stage plan.
package builder
