package main

import (
	"net/http"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
	"github.com/trongnghia2007/minesweeper-agent/internal/game"
)

type HintJSON struct {
	Cell     *game.Cell        `json:"cell"`
	Strategy autoplay.Strategy `json:"strategy,omitempty"`
}

// handleHint reports which cell the agent would play next without playing
// it. Pure query: the session is not updated.
func handleHint(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	var hint HintJSON
	if cell, ok := session.State.Agent.SafeMove(); ok {
		hint = HintJSON{Cell: &cell, Strategy: autoplay.StrategyLogic}
	} else if cell, ok := session.State.Agent.RandomMove(); ok {
		hint = HintJSON{Cell: &cell, Strategy: autoplay.StrategyRandom}
	}
	if _, err := sendJSON(w, hint); err != nil {
		log.Error(err)
	}
}

type StepJSON struct {
	Move    *autoplay.Move `json:"move"`
	Session *GameSession   `json:"session"`
}

func handleStep(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	move, err := session.Step()
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(err.Error()))
		return
	}
	if err := pg.UpdateGameSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, StepJSON{Move: move, Session: session}); err != nil {
		log.Error(err)
	}
}

type AutoplayJSON struct {
	Moves   []autoplay.Move `json:"moves"`
	Session *GameSession    `json:"session"`
}

func handleAutoplay(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	moves, err := session.Autoplay()
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(err.Error()))
		return
	}
	if err := pg.UpdateGameSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, AutoplayJSON{Moves: moves, Session: session}); err != nil {
		log.Error(err)
	}
}
