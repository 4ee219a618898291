package handlers

import (
	"net/http"

	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/service"
	ws "github.com/dom/design-system-studio/internal/websocket"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler upgrades the connection and streams the caller's session
// lifecycle events. Browsers cannot set headers on websocket dials, so the
// access token travels in the query string.
type EventsHandler struct {
	hub         *ws.Hub
	authService *service.AuthService
	logger      *zap.Logger
}

func NewEventsHandler(hub *ws.Hub, authService *service.AuthService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub:         hub,
		authService: authService,
		logger:      logger,
	}
}

func (h *EventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Token required")
		return
	}

	userID, err := middleware.UserIDFromToken(h.authService, token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, userID, h.logger)
	go client.Run()
}
