package game

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Board owns the ground truth of a single game: the grid dimensions, the
// mine locations (fixed at construction) and the set of mines the player
// has flagged as found. It answers queries and performs no inference.
type Board struct {
	height, width int
	mines         CellSet
	found         CellSet
}

// NewBoard places mineCount mines uniformly at random on a height x width
// grid using r. Placement is rejection sampling, which terminates because
// mineCount must be strictly less than the number of squares.
func NewBoard(height, width, mineCount int, r *rand.Rand) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", height, width)
	}
	if mineCount < 0 || mineCount >= height*width {
		return nil, fmt.Errorf(
			"mine count %d out of range for %dx%d board",
			mineCount, height, width,
		)
	}
	mines := make(CellSet, mineCount)
	for len(mines) < mineCount {
		c := Cell{r.IntN(height), r.IntN(width)}
		mines.Add(c)
	}
	return &Board{
		height: height,
		width:  width,
		mines:  mines,
		found:  NewCellSet(),
	}, nil
}

// NewBoardFromMines builds a board with the given mine locations, for
// deterministic games and replays.
func NewBoardFromMines(height, width int, mines []Cell) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", height, width)
	}
	if len(mines) >= height*width {
		return nil, fmt.Errorf(
			"mine count %d out of range for %dx%d board",
			len(mines), height, width,
		)
	}
	b := &Board{
		height: height,
		width:  width,
		mines:  make(CellSet, len(mines)),
		found:  NewCellSet(),
	}
	for _, c := range mines {
		if !b.InBounds(c) {
			return nil, fmt.Errorf("mine %s out of bounds", c)
		}
		b.mines.Add(c)
	}
	if len(b.mines) != len(mines) {
		return nil, fmt.Errorf("duplicate mine locations")
	}
	return b, nil
}

func (b *Board) Height() int    { return b.height }
func (b *Board) Width() int     { return b.width }
func (b *Board) MineCount() int { return len(b.mines) }

func (b *Board) InBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < b.height && 0 <= c.Col && c.Col < b.width
}

// panics [AssertionError]
func (b *Board) assertInBounds(c Cell) {
	if !b.InBounds(c) {
		panic(Assertf(
			"cell %s out of bounds on %dx%d board", c, b.height, b.width,
		))
	}
}

// IsMine reports whether c is mined. Panics [AssertionError] if c is out
// of bounds.
func (b *Board) IsMine(c Cell) bool {
	b.assertInBounds(c)
	return b.mines.Has(c)
}

// NearbyMines counts the mines in the Moore neighborhood of c, excluding c
// itself. Panics [AssertionError] if c is out of bounds.
func (b *Board) NearbyMines(c Cell) int {
	b.assertInBounds(c)
	count := 0
	for _, adj := range Neighbors(b.height, b.width, c) {
		if b.mines.Has(adj) {
			count++
		}
	}
	return count
}

// MarkFound flags c as a found mine. Only win tracking looks at found
// flags; marking a safe cell can never make Won() true, but it is not an
// error. Panics [AssertionError] if c is out of bounds.
func (b *Board) MarkFound(c Cell) {
	b.assertInBounds(c)
	b.found.Add(c)
}

// Won reports whether the found-mines set matches the mine set exactly.
func (b *Board) Won() bool {
	return b.found.Equal(b.mines)
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := range b.height {
		sb.WriteString(strings.Repeat("--", b.width) + "-\n")
		for col := range b.width {
			if b.mines.Has(Cell{row, col}) {
				sb.WriteString("|X")
			} else {
				sb.WriteString("| ")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(strings.Repeat("--", b.width) + "-\n")
	return sb.String()
}

type boardSnapshot struct {
	Height, Width int
	Mines         []Cell
	Found         []Cell
}

// [Board] implements [gob.GobEncoder]
func (b *Board) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(boardSnapshot{
		Height: b.height,
		Width:  b.width,
		Mines:  b.mines.Cells(),
		Found:  b.found.Cells(),
	})
	return buf.Bytes(), err
}

// [Board] implements [gob.GobDecoder]
func (b *Board) GobDecode(data []byte) error {
	var snap boardSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	b.height = snap.Height
	b.width = snap.Width
	b.mines = NewCellSet(snap.Mines...)
	b.found = NewCellSet(snap.Found...)
	return nil
}
