// Package template provides reusable subgraph blueprints. A template holds
// nodes and port links in its own ref space; Instantiate stamps it into a
// graph, merging instantiation tags into every node so separate catchments,
// constituents or scenarios stay distinct while identical stampings collapse
// into the existing nodes.
package template
