package game

import "fmt"

// Cell identifies a board position. Cells are plain values: two cells are
// the same square iff their coordinates are equal.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

// Neighbors returns the Moore neighborhood of c clipped to a height x width
// board, excluding c itself. Corner cells get 3 neighbors, edge cells 5,
// interior cells 8.
func Neighbors(height, width int, c Cell) []Cell {
	neighbors := make([]Cell, 0, 8)
	for row := max(0, c.Row-1); row <= min(height-1, c.Row+1); row++ {
		for col := max(0, c.Col-1); col <= min(width-1, c.Col+1); col++ {
			if adj := (Cell{row, col}); adj != c {
				neighbors = append(neighbors, adj)
			}
		}
	}
	return neighbors
}

type void struct{}

// CellSet is an unordered set of cells. Iteration order is unspecified;
// callers that need a deterministic order must sort.
type CellSet map[Cell]void

func NewCellSet(cells ...Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s.Add(c)
	}
	return s
}

func (s CellSet) Add(c Cell)      { s[c] = void{} }
func (s CellSet) Delete(c Cell)   { delete(s, c) }
func (s CellSet) Has(c Cell) bool { _, ok := s[c]; return ok }

func (s CellSet) Union(other CellSet) {
	for c := range other {
		s.Add(c)
	}
}

func (s CellSet) Equal(other CellSet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Subset reports whether s is a (non-strict) subset of other.
func (s CellSet) Subset(other CellSet) bool {
	if len(s) > len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

func (s CellSet) Clone() CellSet {
	clone := make(CellSet, len(s))
	clone.Union(s)
	return clone
}

func (s CellSet) Cells() []Cell {
	cells := make([]Cell, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	return cells
}
