package knowledge

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"github.com/trongnghia2007/minesweeper-agent/internal/game"
)

var Log = logrus.New()

// Agent plays minesweeper by accumulating logical sentences about the board
// and deducing safe cells and mines from them. It never sees the board
// itself; the driver feeds it one (cell, nearby mine count) observation per
// safe cell opened. The belief state (moves made, safes, mines, knowledge
// base) is owned exclusively by the Agent.
type Agent struct {
	height, width int
	movesMade     game.CellSet
	safes         game.CellSet
	mines         game.CellSet
	knowledge     []*Sentence
	rnd           *rand.Rand
}

// NewAgent creates an agent for a height x width board. r drives random
// move selection; pass nil to seed a fresh PCG source.
func NewAgent(height, width int, r *rand.Rand) (*Agent, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", height, width)
	}
	if r == nil {
		r = rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(),
			new(maphash.Hash).Sum64(),
		))
	}
	return &Agent{
		height:    height,
		width:     width,
		movesMade: game.NewCellSet(),
		safes:     game.NewCellSet(),
		mines:     game.NewCellSet(),
		rnd:       r,
	}, nil
}

func (a *Agent) Height() int { return a.height }
func (a *Agent) Width() int  { return a.width }

func (a *Agent) inBounds(c game.Cell) bool {
	return 0 <= c.Row && c.Row < a.height && 0 <= c.Col && c.Col < a.width
}

// MarkMine records c as a confirmed mine and propagates the fact to every
// sentence in the knowledge base.
func (a *Agent) MarkMine(c game.Cell) {
	a.mines.Add(c)
	for _, s := range a.knowledge {
		s.MarkMine(c)
	}
}

// MarkSafe records c as a confirmed safe cell and propagates the fact to
// every sentence in the knowledge base.
func (a *Agent) MarkSafe(c game.Cell) {
	a.safes.Add(c)
	for _, s := range a.knowledge {
		s.MarkSafe(c)
	}
}

// RecordObservation tells the agent that the safe cell c was opened and has
// count mines among its neighbors. It adds a sentence over the undetermined
// neighbors of c and then runs deduction to a fixed point, so that every
// certain fact derivable from the knowledge base is extracted before the
// next move. Malformed input and observations that contradict established
// facts are rejected with an error.
func (a *Agent) RecordObservation(c game.Cell, count int) (err error) {
	if !a.inBounds(c) {
		return fmt.Errorf("cell %s out of bounds on %dx%d board", c, a.height, a.width)
	}
	if count < 0 || count > 8 {
		return fmt.Errorf("nearby mine count %d out of range", count)
	}
	if a.mines.Has(c) {
		return fmt.Errorf("cell %s is a known mine", c)
	}

	// The new sentence ranges over undetermined neighbors only. Neighbors
	// already known to be mines are accounted for by reducing the count,
	// the same rule MarkMine applies to existing sentences. Validation
	// happens before any mutation so a rejected observation leaves the
	// belief state untouched.
	cells := make([]game.Cell, 0, 8)
	for _, adj := range game.Neighbors(a.height, a.width, c) {
		switch {
		case a.mines.Has(adj):
			count--
		case !a.safes.Has(adj):
			cells = append(cells, adj)
		}
	}
	if count < 0 || count > len(cells) {
		return fmt.Errorf(
			"observation %s=%d contradicts established facts", c, count,
		)
	}

	defer func() {
		var ae game.AssertionError
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.As(e, &ae) {
				err = fmt.Errorf("inconsistent observation %s=%d: %w", c, count, ae)
			} else {
				panic(r)
			}
		}
	}()

	a.movesMade.Add(c)
	a.MarkSafe(c)

	if len(cells) > 0 {
		s := NewSentence(cells, count)
		a.knowledge = append(a.knowledge, s)
		Log.WithFields(logrus.Fields{
			"cell":     c.String(),
			"sentence": s.String(),
		}).Debug("recorded observation")
	}

	// Marking c safe may have shrunk existing sentences and made them
	// decidable, so deduction runs even when the observation is vacuous.
	a.deduce()
	return nil
}

type fact struct {
	cell game.Cell
	mine bool
}

// deduce runs the two deduction rules plus subset inference to exhaustion.
// Newly discovered facts are snapshotted onto a worklist before being
// propagated, so a sentence's own conclusions are applied back to it and to
// every other sentence exactly once.
func (a *Agent) deduce() {
	var pending deque.Deque[fact]
	for changed := true; changed; {
		changed = false

		for _, s := range a.knowledge {
			for _, c := range s.KnownMines() {
				if !a.mines.Has(c) {
					pending.PushBack(fact{c, true})
				}
			}
			for _, c := range s.KnownSafes() {
				if !a.safes.Has(c) {
					pending.PushBack(fact{c, false})
				}
			}
		}
		for pending.Len() > 0 {
			f := pending.PopFront()
			if f.mine {
				if a.safes.Has(f.cell) {
					panic(game.Assertf("cell %s is both safe and mine", f.cell))
				}
				if a.mines.Has(f.cell) {
					continue
				}
				Log.Debug("deduced mine at ", f.cell)
				a.MarkMine(f.cell)
			} else {
				if a.mines.Has(f.cell) {
					panic(game.Assertf("cell %s is both safe and mine", f.cell))
				}
				if a.safes.Has(f.cell) {
					continue
				}
				Log.Debug("deduced safe at ", f.cell)
				a.MarkSafe(f.cell)
			}
			changed = true
		}

		if a.inferSubsets() {
			changed = true
		}
		if a.prune() {
			changed = true
		}
	}
}

// inferSubsets derives, for every pair of sentences where one cell set
// strictly contains the other, the sentence over the difference. Reports
// whether any new sentence was added.
func (a *Agent) inferSubsets() bool {
	added := false
	// a.knowledge grows during iteration; derived sentences are themselves
	// candidates on the next outer pass, so bounding both loops by the
	// original length is enough here.
	n := len(a.knowledge)
	for i := range n {
		for j := range n {
			sub, super := a.knowledge[i], a.knowledge[j]
			if i == j || sub.Len() == 0 || sub.Len() >= super.Len() {
				continue
			}
			if !sub.cells.Subset(super.cells) {
				continue
			}
			diff := super.cells.Clone()
			for c := range sub.cells {
				diff.Delete(c)
			}
			count := super.count - sub.count
			if count < 0 || count > len(diff) {
				panic(game.Assertf(
					"sentences %s and %s are contradictory", sub, super,
				))
			}
			derived := &Sentence{cells: diff, count: count}
			if !a.hasSentence(derived) {
				a.knowledge = append(a.knowledge, derived)
				Log.Debug("inferred ", derived)
				added = true
			}
		}
	}
	return added
}

func (a *Agent) hasSentence(s *Sentence) bool {
	for _, known := range a.knowledge {
		if known.Equal(s) {
			return true
		}
	}
	return false
}

// prune drops sentences emptied by propagation. An empty sentence with a
// positive count claims mines among zero cells; that can only come from an
// inconsistent observation sequence.
func (a *Agent) prune() bool {
	kept := a.knowledge[:0]
	for _, s := range a.knowledge {
		if s.Len() == 0 {
			if s.Count() > 0 {
				panic(game.Assertf("contradictory sentence %s", s))
			}
			continue
		}
		kept = append(kept, s)
	}
	pruned := len(a.knowledge) != len(kept)
	a.knowledge = kept
	return pruned
}

// SafeMove returns a cell known to be safe that has not been played yet.
// Among several candidates the choice is arbitrary. Does not mutate the
// belief state.
func (a *Agent) SafeMove() (game.Cell, bool) {
	for c := range a.safes {
		if !a.movesMade.Has(c) {
			return c, true
		}
	}
	return game.Cell{}, false
}

// RandomMove returns a uniformly random cell that has not been played and
// is not a known mine. The cell's safety is unknown in general. Does not
// mutate the belief state.
func (a *Agent) RandomMove() (game.Cell, bool) {
	candidates := make([]game.Cell, 0, a.height*a.width)
	for row := range a.height {
		for col := range a.width {
			c := game.Cell{Row: row, Col: col}
			if !a.movesMade.Has(c) && !a.mines.Has(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return game.Cell{}, false
	}
	return candidates[a.rnd.IntN(len(candidates))], true
}

// KnownMines returns the cells proven to be mines.
func (a *Agent) KnownMines() []game.Cell { return a.mines.Cells() }

// KnownSafes returns the cells proven to be safe, including those played.
func (a *Agent) KnownSafes() []game.Cell { return a.safes.Cells() }

// MovesMade returns the cells the agent has already played.
func (a *Agent) MovesMade() []game.Cell { return a.movesMade.Cells() }

// KnowledgeSize returns the number of sentences currently held.
func (a *Agent) KnowledgeSize() int { return len(a.knowledge) }

type sentenceSnapshot struct {
	Cells []game.Cell
	Count int
}

type agentSnapshot struct {
	Height, Width int
	MovesMade     []game.Cell
	Safes         []game.Cell
	Mines         []game.Cell
	Knowledge     []sentenceSnapshot
}

// [Agent] implements [gob.GobEncoder]
func (a *Agent) GobEncode() ([]byte, error) {
	snap := agentSnapshot{
		Height:    a.height,
		Width:     a.width,
		MovesMade: a.movesMade.Cells(),
		Safes:     a.safes.Cells(),
		Mines:     a.mines.Cells(),
	}
	for _, s := range a.knowledge {
		snap.Knowledge = append(snap.Knowledge, sentenceSnapshot{
			Cells: s.Cells(),
			Count: s.Count(),
		})
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snap)
	return buf.Bytes(), err
}

// [Agent] implements [gob.GobDecoder]. The random source does not survive
// the round trip; a fresh seeded one takes its place.
func (a *Agent) GobDecode(data []byte) error {
	var snap agentSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	a.height = snap.Height
	a.width = snap.Width
	a.movesMade = game.NewCellSet(snap.MovesMade...)
	a.safes = game.NewCellSet(snap.Safes...)
	a.mines = game.NewCellSet(snap.Mines...)
	a.knowledge = nil
	for _, s := range snap.Knowledge {
		a.knowledge = append(a.knowledge, NewSentence(s.Cells, s.Count))
	}
	a.rnd = rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(),
		new(maphash.Hash).Sum64(),
	))
	return nil
}
