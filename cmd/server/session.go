package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

// SessionState is the persisted part of a game session: the ground-truth
// board, the agent's belief state, and the bookkeeping the API reports.
// It travels gob-encoded in the game_session.state column.
type SessionState struct {
	Board     *game.Board
	Agent     *knowledge.Agent
	Status    autoplay.Status
	MoveCount int
}

type GameSession struct {
	SessionId int64
	PlayerId  *int64
	State     SessionState
	StartedAt time.Time
	EndedAt   time.Time
}

func (s *GameSession) over() bool {
	return s.State.Status != autoplay.Playing
}

func (s *GameSession) finish(status autoplay.Status) {
	s.State.Status = status
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now().UTC()
	}
}

// Open plays a human move. The cell's observation is fed to the agent just
// like one of its own moves, so hints stay sharp afterwards.
func (s *GameSession) Open(c game.Cell) error {
	if s.over() {
		return fmt.Errorf("game is already %s", s.State.Status)
	}
	if !s.State.Board.InBounds(c) {
		return fmt.Errorf("cell %s out of bounds", c)
	}
	if s.State.Board.IsMine(c) {
		s.State.MoveCount++
		s.finish(autoplay.Lost)
		return nil
	}
	count := s.State.Board.NearbyMines(c)
	if err := s.State.Agent.RecordObservation(c, count); err != nil {
		return err
	}
	s.State.MoveCount++
	s.settle()
	return nil
}

// Step lets the agent play one move.
func (s *GameSession) Step() (*autoplay.Move, error) {
	if s.over() {
		return nil, fmt.Errorf("game is already %s", s.State.Status)
	}
	runner, err := autoplay.New(s.State.Board, s.State.Agent)
	if err != nil {
		return nil, err
	}
	move, err := runner.Step()
	if err != nil {
		return nil, err
	}
	if move == nil {
		s.settle()
		return nil, nil
	}
	s.State.MoveCount++
	if move.Status != autoplay.Playing {
		s.finish(move.Status)
	}
	return move, nil
}

// Autoplay lets the agent play the game out.
func (s *GameSession) Autoplay() ([]autoplay.Move, error) {
	if s.over() {
		return nil, fmt.Errorf("game is already %s", s.State.Status)
	}
	runner, err := autoplay.New(s.State.Board, s.State.Agent)
	if err != nil {
		return nil, err
	}
	moves, status, err := runner.Play()
	if err != nil {
		return nil, err
	}
	s.State.MoveCount += len(moves)
	s.finish(status)
	return moves, nil
}

// settle flags agent-proven mines on the board and refreshes the status.
func (s *GameSession) settle() {
	for _, c := range s.State.Agent.KnownMines() {
		s.State.Board.MarkFound(c)
	}
	if s.State.Board.Won() {
		s.finish(autoplay.Won)
	}
}

type GameSessionJSON struct {
	SessionId     string          `json:"session_id"`
	Height        int             `json:"height"`
	Width         int             `json:"width"`
	MineCount     int             `json:"mine_count"`
	Status        autoplay.Status `json:"status"`
	MoveCount     int             `json:"move_count"`
	MovesMade     []game.Cell     `json:"moves_made"`
	KnownMines    []game.Cell     `json:"known_mines"`
	KnownSafes    []game.Cell     `json:"known_safes"`
	KnowledgeSize int             `json:"knowledge_size"`
	StartedAt     int64           `json:"started_at"`
	EndedAt       *int64          `json:"ended_at,omitempty"`
}

// The JSON view never includes ground-truth mine locations, only what the
// agent has proven.
func (s GameSession) MarshalJSON() ([]byte, error) {
	var endedAt *int64
	if !s.EndedAt.IsZero() {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	return json.Marshal(GameSessionJSON{
		SessionId:     strconv.FormatInt(s.SessionId, 10),
		Height:        s.State.Board.Height(),
		Width:         s.State.Board.Width(),
		MineCount:     s.State.Board.MineCount(),
		Status:        s.State.Status,
		MoveCount:     s.State.MoveCount,
		MovesMade:     s.State.Agent.MovesMade(),
		KnownMines:    s.State.Agent.KnownMines(),
		KnownSafes:    s.State.Agent.KnownSafes(),
		KnowledgeSize: s.State.Agent.KnowledgeSize(),
		StartedAt:     s.StartedAt.UnixMilli(),
		EndedAt:       endedAt,
	})
}
