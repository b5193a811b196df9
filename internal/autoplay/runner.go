package autoplay

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

var Log = logrus.New()

type Strategy string

const (
	StrategyLogic  Strategy = "logic"
	StrategyRandom Strategy = "random"
)

type Status string

const (
	// Playing means moves remain and no mine was hit.
	Playing Status = "playing"
	Won     Status = "won"
	Lost    Status = "lost"
	// Exhausted means no eligible cell remains but the win condition was
	// not reached (possible when not every mine got flagged as found).
	Exhausted Status = "exhausted"
)

// Move is one turn of the driver loop: which cell the agent picked, why,
// and what came of it.
type Move struct {
	Cell     game.Cell `json:"cell"`
	Strategy Strategy  `json:"strategy"`
	Mine     bool      `json:"mine"`
	Count    int       `json:"count"`
	Status   Status    `json:"status"`
}

// Runner alternates between agent move selection and board queries: the
// per-turn loop the core components leave to an external driver. The board
// and agent stay decoupled; only observations cross the boundary.
type Runner struct {
	board *game.Board
	agent *knowledge.Agent
}

func New(board *game.Board, agent *knowledge.Agent) (*Runner, error) {
	if board.Height() != agent.Height() || board.Width() != agent.Width() {
		return nil, fmt.Errorf(
			"board is %dx%d but agent expects %dx%d",
			board.Height(), board.Width(), agent.Height(), agent.Width(),
		)
	}
	return &Runner{board: board, agent: agent}, nil
}

// Status reports the game state without advancing it.
func (r *Runner) Status() Status {
	if r.board.Won() {
		return Won
	}
	if _, ok := r.agent.SafeMove(); ok {
		return Playing
	}
	if _, ok := r.agent.RandomMove(); ok {
		return Playing
	}
	return Exhausted
}

// Step plays a single move: a known-safe cell if one exists, otherwise a
// random undetermined cell. Mines the agent has proven are flagged on the
// board before moving, so the win check stays current. Returns nil when no
// move remains.
func (r *Runner) Step() (*Move, error) {
	for _, c := range r.agent.KnownMines() {
		r.board.MarkFound(c)
	}
	if r.board.Won() {
		return nil, nil
	}

	move := &Move{Strategy: StrategyLogic}
	cell, ok := r.agent.SafeMove()
	if !ok {
		move.Strategy = StrategyRandom
		if cell, ok = r.agent.RandomMove(); !ok {
			return nil, nil
		}
	}
	move.Cell = cell

	if r.board.IsMine(cell) {
		move.Mine = true
		move.Status = Lost
		Log.WithField("cell", cell.String()).Debug("stepped on a mine")
		return move, nil
	}

	move.Count = r.board.NearbyMines(cell)
	if err := r.agent.RecordObservation(cell, move.Count); err != nil {
		return nil, err
	}
	for _, c := range r.agent.KnownMines() {
		r.board.MarkFound(c)
	}
	move.Status = r.Status()
	Log.WithFields(logrus.Fields{
		"cell":     cell.String(),
		"strategy": move.Strategy,
		"count":    move.Count,
	}).Debug("opened cell")
	return move, nil
}

// Play runs the loop to completion and returns the move history. The final
// move's Status tells how the game ended.
func (r *Runner) Play() ([]Move, Status, error) {
	var moves []Move
	for {
		move, err := r.Step()
		if err != nil {
			return moves, Playing, err
		}
		if move == nil {
			return moves, r.Status(), nil
		}
		moves = append(moves, *move)
		if move.Status != Playing {
			return moves, move.Status, nil
		}
	}
}
