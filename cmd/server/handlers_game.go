package main

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/jackc/pgx/v5"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type NewGameParams struct {
	Height    int    `schema:"height,required"`
	Width     int    `schema:"width,required"`
	MineCount int    `schema:"mine_count,required"`
	Seed      uint64 `schema:"seed"`
}

type PosParams struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		payload["username"] = claims.Username
	}
	if _, err := sendJSON(w, payload); err != nil {
		log.Error(err)
	}
}

func handleNewGame(w http.ResponseWriter, r *http.Request) {
	var gameParams NewGameParams
	if err := dec.Decode(&gameParams, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	seed := gameParams.Seed
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed))

	board, err := game.NewBoard(
		gameParams.Height, gameParams.Width, gameParams.MineCount, rnd,
	)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	agent, err := knowledge.NewAgent(gameParams.Height, gameParams.Width, rnd)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	state := &SessionState{
		Board:  board,
		Agent:  agent,
		Status: autoplay.Playing,
	}

	var playerId *int64
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		log.Debug("creating session for player ", claims.Username)
		playerId = &claims.PlayerId
	} else {
		log.Debug("creating anonymous session")
	}
	session, err := pg.CreateGameSession(r.Context(), playerId, state)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func fetchSession(w http.ResponseWriter, r *http.Request) *GameSession {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil
	}
	session, err := pg.GetSession(r.Context(), sessionId)
	if err == pgx.ErrNoRows {
		w.WriteHeader(http.StatusNotFound)
		return nil
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return nil
	}
	return session
}

func handleGetGame(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func handleOpen(w http.ResponseWriter, r *http.Request) {
	var posParams PosParams
	if err := dec.Decode(&posParams, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	cell := game.Cell{Row: posParams.Row, Col: posParams.Col}
	if err := session.Open(cell); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	if err := pg.UpdateGameSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}
