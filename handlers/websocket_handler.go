package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/models"
)

type WebSocketHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWebSocketHandler: пустой allowedOrigins или "*" разрешает любой Origin.
func NewWebSocketHandler(hub *events.Hub, allowedOrigins []string, logger zerolog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	anyOrigin := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || allowed[origin]
			},
		},
		logger: logger.With().Str("handler", "websocket").Logger(),
	}
}

// ServeTeam подключает к комнате команды: /ws/teams/{teamID}?token=...
// Команда видит только себя, персонал любую комнату.
func (h *WebSocketHandler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		badRequestResponse(w, r, errMissingTeamID)
		return
	}

	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if role == models.RoleTeam && middleware.GetTeamIDFromContext(r.Context()) != teamID {
		forbiddenResponse(w, r, "cannot subscribe to another team")
		return
	}
	if role == models.RoleMentor && middleware.GetMentorIDFromContext(r.Context()) == "" {
		forbiddenResponse(w, r, "account is not linked to a mentor")
		return
	}

	h.serve(w, r, events.TeamRoom(teamID))
}

// ServeLeaderboard подключает к публичной комнате обновлений таблицы лидеров.
func (h *WebSocketHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, events.LeaderboardRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP-ошибку клиенту
		h.logger.Warn().Err(err).Str("room", room).Msg("Failed to upgrade connection")
		return
	}
	if client := h.hub.Attach(conn, room); client == nil {
		h.logger.Warn().Str("room", room).Msg("Hub is stopped, connection dropped")
		return
	}
	h.logger.Debug().Str("room", room).Msg("Client subscribed")
}
