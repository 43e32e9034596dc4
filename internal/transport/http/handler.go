package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler wires the game service and lobby queue into HTTP. Clients are
// expected to poll the session state endpoint at roughly 500ms intervals;
// every poll is also what drives the game's phase machine forward.
type Handler struct {
	service  *app.GameService
	queue    *app.Queue
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(service *app.GameService, queue *app.Queue, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		queue:   queue,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter builds the gin engine with recovery, request logging and all
// game routes.
func NewRouter(h *Handler, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasSuffix(path, "/watch") {
			return
		}
		log.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/api/session/:id", h.getState)
	r.POST("/api/session/start", h.startGame)
	r.POST("/api/session/:id/players", h.addPlayer)
	r.POST("/api/session/answers", h.submitAnswer)
	r.POST("/api/session/:id/jokers", h.useJoker)
	r.POST("/api/session/:id/reactions", h.addReaction)
	r.GET("/api/session/:id/watch", h.watch)

	r.GET("/api/queue", h.queueState)
	r.POST("/api/queue", h.joinQueue)
	r.DELETE("/api/queue/:username", h.leaveQueue)

	return r
}

type errorPayload struct {
	Error string `json:"error"`
}

type playerPayload struct {
	Username string `json:"username"`
}

type jokerPayload struct {
	Username string `json:"username"`
	Action   string `json:"action"`
}

func (h *Handler) getState(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.service.GetState(id)
	if err != nil {
		c.JSON(http.StatusNotFound, errorPayload{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) startGame(c *gin.Context) {
	state, err := h.queue.Start(c.Request.Context())
	switch {
	case errors.Is(err, domain.ErrStartInProgress):
		c.JSON(http.StatusForbidden, errorPayload{Error: err.Error()})
	case err != nil:
		h.log.Error().Err(err).Msg("start game")
		c.JSON(http.StatusInternalServerError, errorPayload{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"gameId": state.UpcomingGameID})
	}
}

func (h *Handler) addPlayer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var payload playerPayload
	if err := c.BindJSON(&payload); err != nil {
		return
	}
	player, err := h.service.AddPlayer(id, payload.Username)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorPayload{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, errorPayload{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, player)
	}
}

func (h *Handler) submitAnswer(c *gin.Context) {
	var sub domain.Submission
	if err := c.BindJSON(&sub); err != nil {
		return
	}
	echoed, err := h.service.SubmitAnswer(sub)
	if err != nil {
		c.JSON(http.StatusNotFound, errorPayload{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, echoed)
}

// useJoker echoes the payload back when the joker applied. An invalid use
// is an expected outcome and answers 200 with a null body, not an error.
func (h *Handler) useJoker(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var payload jokerPayload
	if err := c.BindJSON(&payload); err != nil {
		return
	}
	if h.service.UseJoker(id, payload.Username, payload.Action) {
		c.JSON(http.StatusOK, payload)
		return
	}
	c.JSON(http.StatusOK, nil)
}

func (h *Handler) addReaction(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var reaction domain.Reaction
	if err := c.BindJSON(&reaction); err != nil {
		return
	}
	echoed, err := h.service.AddReaction(id, reaction)
	if err != nil {
		c.JSON(http.StatusNotFound, errorPayload{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, echoed)
}

func (h *Handler) queueState(c *gin.Context) {
	c.JSON(http.StatusOK, h.queue.State())
}

func (h *Handler) joinQueue(c *gin.Context) {
	var payload playerPayload
	if err := c.BindJSON(&payload); err != nil {
		return
	}
	user, err := h.queue.Join(payload.Username)
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.JSON(http.StatusForbidden, errorPayload{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, user)
	}
}

func (h *Handler) leaveQueue(c *gin.Context) {
	user, err := h.queue.Leave(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func sessionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, errorPayload{Error: "invalid session id"})
		return 0, false
	}
	return id, true
}
