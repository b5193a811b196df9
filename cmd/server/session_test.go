package main

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

func newTestSession(t *testing.T, mines ...game.Cell) *GameSession {
	t.Helper()
	board, err := game.NewBoardFromMines(3, 3, mines)
	if err != nil {
		t.Fatal(err)
	}
	agent, err := knowledge.NewAgent(3, 3, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	return &GameSession{
		SessionId: 1,
		State: SessionState{
			Board:  board,
			Agent:  agent,
			Status: autoplay.Playing,
		},
		StartedAt: time.Now().UTC(),
	}
}

func TestSessionOpen(t *testing.T) {
	s := newTestSession(t, game.Cell{Row: 0, Col: 0})

	if err := s.Open(game.Cell{Row: 2, Col: 2}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, autoplay.Playing, s.State.Status)
	assert.Equal(t, 1, s.State.MoveCount)

	if err := s.Open(game.Cell{Row: 5, Col: 5}); err == nil {
		t.Fatal("expected an error for out-of-bounds cell")
	}
}

func TestSessionOpenMineLoses(t *testing.T) {
	s := newTestSession(t, game.Cell{Row: 0, Col: 0})

	if err := s.Open(game.Cell{Row: 0, Col: 0}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, autoplay.Lost, s.State.Status)
	assert.False(t, s.EndedAt.IsZero())

	if err := s.Open(game.Cell{Row: 2, Col: 2}); err == nil {
		t.Fatal("expected an error for a finished game")
	}
}

func TestSessionAutoplay(t *testing.T) {
	s := newTestSession(t, game.Cell{Row: 0, Col: 0})
	if err := s.Open(game.Cell{Row: 2, Col: 2}); err != nil {
		t.Fatal(err)
	}

	moves, err := s.Autoplay()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, autoplay.Won, s.State.Status)
	assert.Equal(t, 1+len(moves), s.State.MoveCount)
	assert.False(t, s.EndedAt.IsZero())
}

func TestSessionStateGobRoundTrip(t *testing.T) {
	s := newTestSession(t, game.Cell{Row: 0, Col: 0})
	if err := s.Open(game.Cell{Row: 2, Col: 2}); err != nil {
		t.Fatal(err)
	}

	encoded, err := encodeState(&s.State)
	if err != nil {
		t.Fatal(err)
	}
	var state SessionState
	if err := gob.NewDecoder(bytes.NewBuffer(encoded)).Decode(&state); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, s.State.Status, state.Status)
	assert.Equal(t, s.State.MoveCount, state.MoveCount)
	assert.Equal(t, s.State.Board.MineCount(), state.Board.MineCount())
	assert.Equal(t, s.State.Agent.KnowledgeSize(), state.Agent.KnowledgeSize())

	// The reloaded session keeps playing.
	reloaded := &GameSession{SessionId: s.SessionId, State: state, StartedAt: s.StartedAt}
	if _, err := reloaded.Autoplay(); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, autoplay.Won, reloaded.State.Status)
}

func TestSessionJSONHidesMines(t *testing.T) {
	s := newTestSession(t, game.Cell{Row: 0, Col: 0})

	payload, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var view GameSessionJSON
	if err := json.Unmarshal(payload, &view); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "1", view.SessionId)
	assert.Equal(t, 3, view.Height)
	assert.Equal(t, 3, view.Width)
	assert.Equal(t, 1, view.MineCount)
	assert.Equal(t, autoplay.Playing, view.Status)
	assert.Empty(t, view.KnownMines) // nothing proven yet, nothing leaked
}
