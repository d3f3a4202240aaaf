package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/services"
)

// TeamPortalHandler обслуживает /api/team: команда берётся только из токена.
type TeamPortalHandler struct {
	notificationService services.NotificationService
}

func NewTeamPortalHandler(notificationService services.NotificationService) *TeamPortalHandler {
	return &TeamPortalHandler{notificationService: notificationService}
}

func teamFromToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	teamID := middleware.GetTeamIDFromContext(r.Context())
	if teamID == "" {
		forbiddenResponse(w, r, "account is not linked to a team")
		return "", false
	}
	return teamID, true
}

// Dashboard godoc
// @Summary  Дашборд команды: прогресс, уведомления, дедлайны
// @Tags     team
// @Produce  json
// @Success  200 {object} services.Dashboard
// @Security BearerAuth
// @Router   /team/dashboard [get]
func (h *TeamPortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamFromToken(w, r)
	if !ok {
		return
	}
	dash, err := h.notificationService.GetDashboard(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"dashboard": dash})
}

// Notifications godoc
// @Summary  Уведомления команды
// @Tags     team
// @Produce  json
// @Success  200 {array} models.Notification
// @Security BearerAuth
// @Router   /team/notifications [get]
func (h *TeamPortalHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamFromToken(w, r)
	if !ok {
		return
	}
	list, err := h.notificationService.GetTeamNotifications(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"notifications": list})
}

func (h *TeamPortalHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamFromToken(w, r)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), teamID, chi.URLParam(r, "notificationID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamPortalHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamFromToken(w, r)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkAllRead(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"marked": n})
}

// JudgeHandler отдаёт судьям список активных команд.
type JudgeHandler struct {
	teamService services.TeamService
}

func NewJudgeHandler(teamService services.TeamService) *JudgeHandler {
	return &JudgeHandler{teamService: teamService}
}

func (h *JudgeHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	active := true
	teams, err := h.teamService.ListTeams(r.Context(), repositories.TeamFilter{IsActive: &active})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}
