package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/services"
)

const maxSheetUpload = 10 << 20

type AdminHandler struct {
	authService      services.AuthService
	teamService      services.TeamService
	importService    services.ImportService
	analyticsService services.AnalyticsService
}

func NewAdminHandler(
	authService services.AuthService,
	teamService services.TeamService,
	importService services.ImportService,
	analyticsService services.AnalyticsService,
) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		teamService:      teamService,
		importService:    importService,
		analyticsService: analyticsService,
	}
}

// CreateUser godoc
// @Summary  Создать аккаунт (admin)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    input body services.CreateUserInput true "Account"
// @Success  201 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input services.CreateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.CreateUser(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"user": user})
}

// ListTeams godoc
// @Summary  Список команд
// @Tags     admin
// @Produce  json
// @Param    category query string false "Category"
// @Param    active   query bool   false "Only active / inactive"
// @Success  200 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /admin/teams [get]
func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	var filter repositories.TeamFilter
	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		filter.Category = &c
	}
	if a := q.Get("active"); a != "" {
		active, err := strconv.ParseBool(a)
		if err != nil {
			badRequestResponse(w, r, errors.New("active must be true or false"))
			return
		}
		filter.IsActive = &active
	}

	teams, err := h.teamService.ListTeams(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"team": team})
}

func (h *AdminHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *AdminHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TeamName == nil && input.Category == nil && input.IsActive == nil && input.Rank == nil && input.Members == nil {
		badRequestResponse(w, r, errors.New("at least one field must be provided"))
		return
	}

	team, err := h.teamService.UpdateTeam(r.Context(), chi.URLParam(r, "teamID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *AdminHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportTeams godoc
// @Summary  Импорт команд из .xlsx / .csv
// @Tags     admin
// @Accept   multipart/form-data
// @Produce  json
// @Param    file formData file true "team_id, team_name, category[, leader_name, leader_email]"
// @Success  200 {object} services.TeamImportResult
// @Failure  422 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /admin/teams/import [post]
func (h *AdminHandler) ImportTeams(w http.ResponseWriter, r *http.Request) {
	file, filename, err := formFile(w, r, "file", maxSheetUpload)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	result, err := h.importService.ImportTeams(r.Context(), file, filename)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"result": result})
}

// Analytics godoc
// @Summary  Сводная статистика
// @Tags     admin
// @Produce  json
// @Success  200 {object} models.AnalyticsStats
// @Security BearerAuth
// @Router   /admin/analytics [get]
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsService.GetStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"analytics": stats})
}
