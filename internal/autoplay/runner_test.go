package autoplay

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

func newTestRunner(t *testing.T, height, width int, mines ...game.Cell) (*Runner, *game.Board, *knowledge.Agent) {
	t.Helper()
	board, err := game.NewBoardFromMines(height, width, mines)
	if err != nil {
		t.Fatal(err)
	}
	agent, err := knowledge.NewAgent(height, width, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	runner, err := New(board, agent)
	if err != nil {
		t.Fatal(err)
	}
	return runner, board, agent
}

func TestNewRejectsSizeMismatch(t *testing.T) {
	board, err := game.NewBoardFromMines(2, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	agent, err := knowledge.NewAgent(3, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(board, agent); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStatusFreshGame(t *testing.T) {
	runner, _, _ := newTestRunner(t, 3, 3, game.Cell{Row: 0, Col: 0})
	assert.Equal(t, Playing, runner.Status())
}

func TestPlayZeroMineBoard(t *testing.T) {
	runner, board, _ := newTestRunner(t, 2, 3)

	// With no mines to find, the found set already matches the mine set.
	moves, status, err := runner.Play()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, Won, status)
	assert.Empty(t, moves)
	assert.True(t, board.Won())
}

// A 3x3 board with a single mine at 0:0 is fully decidable once any far
// corner is opened: every following move is a logical one and the game must
// be won without guessing.
func TestPlaySingleMineNoGuessing(t *testing.T) {
	runner, board, agent := newTestRunner(t, 3, 3, game.Cell{Row: 0, Col: 0})

	seed := game.Cell{Row: 2, Col: 2}
	if err := agent.RecordObservation(seed, board.NearbyMines(seed)); err != nil {
		t.Fatal(err)
	}

	moves, status, err := runner.Play()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, Won, status)
	assert.True(t, board.Won())
	for _, move := range moves {
		assert.Equal(t, StrategyLogic, move.Strategy)
		assert.False(t, move.Mine)
	}
	assert.Equal(t, []game.Cell{{Row: 0, Col: 0}}, agent.KnownMines())
}

// With three mines in a 2x2 board the first (necessarily random) move
// either loses or decides the game on the spot.
func TestPlayGuessHeavyBoard(t *testing.T) {
	mines := []game.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}}
	runner, board, _ := newTestRunner(t, 2, 2, mines...)

	moves, status, err := runner.Play()
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) == 0 {
		t.Fatal("expected at least one move")
	}
	assert.Equal(t, StrategyRandom, moves[0].Strategy)
	switch status {
	case Lost:
		assert.True(t, moves[len(moves)-1].Mine)
	case Won:
		assert.True(t, board.Won())
	default:
		t.Fatalf("unexpected status %s", status)
	}
}

func TestStepFlagsDeducedMines(t *testing.T) {
	runner, board, agent := newTestRunner(t, 2, 2, game.Cell{Row: 0, Col: 0})

	// 1:1 sees one mine among three neighbors; opening the two safe cells
	// leaves the mine pinned by elimination.
	for _, c := range []game.Cell{{Row: 1, Col: 1}, {Row: 0, Col: 1}, {Row: 1, Col: 0}} {
		if err := agent.RecordObservation(c, board.NearbyMines(c)); err != nil {
			t.Fatal(err)
		}
	}
	assert.Equal(t, []game.Cell{{Row: 0, Col: 0}}, agent.KnownMines())

	// The next step has nothing left to open but must flag the mine.
	move, err := runner.Step()
	if err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, move)
	assert.True(t, board.Won())
	assert.Equal(t, Won, runner.Status())
}
