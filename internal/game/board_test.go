package game

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBoard(height, width int, mines ...Cell) *Board {
	return &Board{
		height: height,
		width:  width,
		mines:  NewCellSet(mines...),
		found:  NewCellSet(),
	}
}

func TestNewBoardPlacesExactlyMineCount(t *testing.T) {
	tests := []struct {
		name                     string
		height, width, mineCount int
	}{
		{"8x8(8)", 8, 8, 8},
		{"9x9(10)", 9, 9, 10},
		{"3x3(8)", 3, 3, 8},
		{"1x2(1)", 1, 2, 1},
		{"5x5(0)", 5, 5, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			b, err := NewBoard(test.height, test.width, test.mineCount, r)
			if err != nil {
				t.Fatal(err)
			}
			if len(b.mines) != test.mineCount {
				t.Fatalf("have %d mines, want %d", len(b.mines), test.mineCount)
			}
			for c := range b.mines {
				if !b.InBounds(c) {
					t.Fatalf("mine %s out of bounds", c)
				}
			}
		})
	}
}

func TestNewBoardRejectsBadParams(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	tests := []struct {
		name                     string
		height, width, mineCount int
	}{
		{"zero height", 0, 5, 1},
		{"negative width", 5, -1, 1},
		{"negative mines", 5, 5, -1},
		{"full board", 2, 2, 4},
		{"too many mines", 2, 2, 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewBoard(test.height, test.width, test.mineCount, r); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNearbyMines(t *testing.T) {
	// X X .
	// . . .
	// . . X
	b := testBoard(3, 3, Cell{0, 0}, Cell{0, 1}, Cell{2, 2})

	tests := []struct {
		cell Cell
		want int
	}{
		{Cell{1, 1}, 3},
		{Cell{1, 0}, 2},
		{Cell{0, 2}, 1},
		{Cell{2, 0}, 0},
		{Cell{2, 2}, 0}, // a mine does not count itself
		{Cell{0, 0}, 1}, // only the neighboring mine
	}
	for _, test := range tests {
		if have := b.NearbyMines(test.cell); have != test.want {
			t.Errorf("NearbyMines(%s): have %d, want %d", test.cell, have, test.want)
		}
	}
}

func TestIsMine(t *testing.T) {
	b := testBoard(2, 2, Cell{0, 1})

	assert.True(t, b.IsMine(Cell{0, 1}))
	assert.False(t, b.IsMine(Cell{0, 0}))
}

func TestOutOfBoundsQueriesPanic(t *testing.T) {
	b := testBoard(2, 2, Cell{0, 0})

	for _, cell := range []Cell{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		func() {
			defer func() {
				var ae AssertionError
				r := recover()
				if r == nil {
					t.Fatalf("IsMine(%s) did not panic", cell)
				}
				if e, ok := r.(error); !ok || !errors.As(e, &ae) {
					t.Fatalf("IsMine(%s) panicked with %v, want AssertionError", cell, r)
				}
			}()
			b.IsMine(cell)
		}()
	}
}

func TestWon(t *testing.T) {
	b := testBoard(2, 2, Cell{0, 0}, Cell{1, 1})

	assert.False(t, b.Won())
	b.MarkFound(Cell{0, 0})
	assert.False(t, b.Won())
	b.MarkFound(Cell{1, 1})
	assert.True(t, b.Won())
}

func TestWonRequiresExactMatch(t *testing.T) {
	b := testBoard(2, 2, Cell{0, 0})

	b.MarkFound(Cell{0, 0})
	b.MarkFound(Cell{1, 1}) // flagged a safe cell as well
	assert.False(t, b.Won())
}

func TestBoardGobRoundTrip(t *testing.T) {
	b := testBoard(3, 4, Cell{0, 0}, Cell{2, 3})
	b.MarkFound(Cell{0, 0})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		t.Fatal(err)
	}
	var decoded Board
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, b.height, decoded.height)
	assert.Equal(t, b.width, decoded.width)
	assert.True(t, b.mines.Equal(decoded.mines))
	assert.True(t, b.found.Equal(decoded.found))
	assert.Equal(t, 1, decoded.NearbyMines(Cell{1, 1}))
}
