package http

import (
	"time"

	"trivia-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// watchInterval matches the polling cadence expected of REST clients.
const watchInterval = 500 * time.Millisecond

// watch streams session snapshots over a websocket every 500ms. Each push
// goes through GetState and therefore drives the phase machine exactly
// like a REST poll would. The stream ends after GAME_OVER is delivered or
// when the client goes away.
func (h *Handler) watch(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if _, err := h.service.GetState(id); err != nil {
		c.JSON(404, errorPayload{Error: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		state, err := h.service.GetState(id)
		if err != nil {
			return
		}
		if err := conn.WriteJSON(state); err != nil {
			return
		}
		if state.Phase == domain.PhaseGameOver {
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		}
	}
}
