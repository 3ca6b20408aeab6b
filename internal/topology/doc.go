// Package topology turns spatial adjacency into cross-unit links. An
// adjacency source yields (unit, downstream-unit-or-none) tag pairs; for
// every unit draining inside the domain, the designated outlet node of the
// unit is linked to the designated inlet node of its downstream neighbor.
// Units draining past the domain edge are boundary outlets and simply get
// no outgoing link.
//
// D8Grid derives those pairs from a D8 flow-direction raster using the
// TauDEM code convention (1=E, 2=NE, 3=N, 4=NW, 5=W, 6=SW, 7=S, 8=SE).
package topology
