package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trongnghia2007/minesweeper-agent/internal/game"
)

// Sentence is a single unit of knowledge about the game: the logical
// statement "exactly count of these cells are mines". Cells are removed in
// place as their status becomes known; a removed mine is still accounted
// for by decrementing count.
type Sentence struct {
	cells game.CellSet
	count int
}

func NewSentence(cells []game.Cell, count int) *Sentence {
	return &Sentence{cells: game.NewCellSet(cells...), count: count}
}

func (s *Sentence) Len() int   { return len(s.cells) }
func (s *Sentence) Count() int { return s.count }

func (s *Sentence) Cells() []game.Cell {
	return s.cells.Cells()
}

// Equal reports value equality: same cell set, same count.
func (s *Sentence) Equal(other *Sentence) bool {
	return s.count == other.count && s.cells.Equal(other.cells)
}

// KnownMines returns every cell of the sentence when all of them must be
// mines, i.e. when count equals the number of remaining cells. An empty
// sentence with count 0 satisfies that trivially and yields nothing.
func (s *Sentence) KnownMines() []game.Cell {
	if len(s.cells) > 0 && s.count == len(s.cells) {
		return s.cells.Cells()
	}
	return nil
}

// KnownSafes returns every cell of the sentence when none of them can be a
// mine, i.e. when count is 0.
func (s *Sentence) KnownSafes() []game.Cell {
	if s.count == 0 {
		return s.cells.Cells()
	}
	return nil
}

// MarkMine records the fact that c is a mine. If c belongs to the sentence
// it is removed and count is decremented; the mine is then accounted for
// outside the remaining cell set. No-op if c is absent, so repeated calls
// are idempotent. Panics [game.AssertionError] if the decrement would take
// count below zero, which can only mean the caller fed inconsistent facts.
func (s *Sentence) MarkMine(c game.Cell) {
	if !s.cells.Has(c) {
		return
	}
	if s.count == 0 {
		panic(game.Assertf("sentence %s cannot contain mine %s", s, c))
	}
	s.cells.Delete(c)
	s.count--
}

// MarkSafe records the fact that c is safe. If c belongs to the sentence it
// is removed; count is unchanged. No-op if c is absent.
func (s *Sentence) MarkSafe(c game.Cell) {
	s.cells.Delete(c)
}

func (s *Sentence) String() string {
	cells := s.cells.Cells()
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return fmt.Sprintf("{%s} = %d", strings.Join(parts, " "), s.count)
}
