package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		log.Debug("\tws origin: ", r.Host)
		return true
	},
}

// handleWatchWs streams agent play over a websocket. The client sends text
// commands:
//
//	step // agent plays one move
//	play // agent plays the game out, one JSON message per move
//
// Every move is answered with a move payload, and each command ends with a
// session payload.
func handleWatchWs(w http.ResponseWriter, r *http.Request) {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	session, err := pg.GetSession(context.Background(), sessionId)
	if err == pgx.ErrNoRows {
		w.WriteHeader(http.StatusNotFound)
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn("read: ", err)
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		command := strings.TrimSpace(string(message))
		log.Debug("\t> ", command)
		switch command {
		case "step":
			move, err := session.Step()
			if err != nil {
				log.Error("step: ", err)
				return
			}
			if move != nil {
				if err := c.WriteJSON(move); err != nil {
					log.Error("write: ", err)
					return
				}
			}
		case "play":
			for session.State.Status == autoplay.Playing {
				move, err := session.Step()
				if err != nil {
					log.Error("play: ", err)
					return
				}
				if move == nil {
					break
				}
				if err := c.WriteJSON(move); err != nil {
					log.Error("write: ", err)
					return
				}
			}
		default:
			log.Warn("unknown command: ", command)
			return
		}
		if err := pg.UpdateGameSession(
			context.Background(), session,
		); err != nil {
			log.Error(err)
			return
		}
		if err := c.WriteJSON(session); err != nil {
			log.Error("write: ", err)
			break
		}
		log.Debug("\t< <session data>")
	}
}
