package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/authflow"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Events handles GET /sessions/{id}/events
// @Summary      Stream session transitions
// @Description  Upgrades to a WebSocket that receives one JSON message per state transition. A session accepts a single observer.
// @Tags         sessions
// @Param        id   path  string  true  "Session ID"
// @Success      101
// @Failure      404  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/events [get]
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	events, err := s.attach()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	defer s.detach()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("session", s.id.String()), zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("session", s.id.String()))
	log.Debug("observer connected")

	// the current state first so the observer never misses where the session is
	current := s.machine.Snapshot()
	if err := h.send(conn, authflow.StateChanged{Previous: current.State, Snapshot: current}); err != nil {
		return
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("observer read failed", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if err := h.send(conn, ev); err != nil {
				log.Debug("observer write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-readDone:
			log.Debug("observer disconnected")
			return
		}
	}
}

// eventMessage is one transition as sent to the observer
type eventMessage struct {
	Previous authflow.State    `json:"previous"`
	Session  authflow.Snapshot `json:"session"`
}

func (h *SessionHandler) send(conn *websocket.Conn, ev authflow.StateChanged) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(eventMessage{Previous: ev.Previous, Session: ev.Snapshot})
}
