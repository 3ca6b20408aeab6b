package topology

import (
	"fmt"
	"strconv"

	"github.com/ConnectedSystems/openwater/internal/graph"
)

// Tag keys carried by every grid cell's nodes.
const (
	TagRow = "row"
	TagCol = "col"
)

// CellTags returns the tag pair identifying grid cell (row, col).
func CellTags(row, col int) graph.Tags {
	return graph.Tags{TagRow: strconv.Itoa(row), TagCol: strconv.Itoa(col)}
}

// Pair is one spatial adjacency fact: a unit and the unit it drains to.
// A nil Downstream marks a boundary unit whose flow leaves the domain.
type Pair struct {
	Unit       graph.Tags
	Downstream graph.Tags
}

// d8Offsets maps TauDEM flow-direction codes to (row, col) deltas, with
// north being row-1. Codes outside the map (0 is common in rasters) mean
// the cell drains out of the domain.
var d8Offsets = map[int][2]int{
	1: {0, 1},   // east
	2: {-1, 1},  // northeast
	3: {-1, 0},  // north
	4: {-1, -1}, // northwest
	5: {0, -1},  // west
	6: {1, -1},  // southwest
	7: {1, 0},   // south
	8: {1, 1},   // southeast
}

// D8Grid is a rows by cols raster of D8 flow-direction codes, row-major.
type D8Grid struct {
	Rows int
	Cols int
	Dirs []int
}

// Pairs derives the adjacency pairs of the raster. A cell whose direction
// code is unknown, or whose step lands outside the raster, becomes a
// boundary pair.
func (d D8Grid) Pairs() ([]Pair, error) {
	if d.Rows <= 0 || d.Cols <= 0 {
		return nil, fmt.Errorf("d8 grid must have positive dimensions, got %dx%d", d.Rows, d.Cols)
	}
	if len(d.Dirs) != d.Rows*d.Cols {
		return nil, fmt.Errorf("d8 grid of %dx%d needs %d direction codes, got %d",
			d.Rows, d.Cols, d.Rows*d.Cols, len(d.Dirs))
	}

	pairs := make([]Pair, 0, d.Rows*d.Cols)
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			p := Pair{Unit: CellTags(r, c)}
			if off, ok := d8Offsets[d.Dirs[r*d.Cols+c]]; ok {
				nr, nc := r+off[0], c+off[1]
				if nr >= 0 && nr < d.Rows && nc >= 0 && nc < d.Cols {
					p.Downstream = CellTags(nr, nc)
				}
			}
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}
