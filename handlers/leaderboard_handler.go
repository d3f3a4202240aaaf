package handlers

import (
	"net/http"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Get godoc
// @Summary  Таблица лидеров
// @Tags     leaderboard
// @Produce  json
// @Success  200 {object} models.Leaderboard
// @Router   /leaderboard [get]
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboardService.GetLeaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"leaderboard": board})
}

// Import godoc
// @Summary  Заменить таблицу лидеров из .xlsx / .csv
// @Tags     admin
// @Accept   multipart/form-data
// @Produce  json
// @Param    file formData file true "team_name, rank, innovation_uniqueness, technical_feasibility, potential_impact, total_score"
// @Success  200 {object} models.Leaderboard
// @Failure  422 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /admin/leaderboard/import [post]
func (h *LeaderboardHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, filename, err := formFile(w, r, "file", maxSheetUpload)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	board, err := h.leaderboardService.ImportLeaderboard(r.Context(), file, filename)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"leaderboard": board})
}

func (h *LeaderboardHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var entries []models.LeaderboardEntry
	if err := readJSON(w, r, &entries); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	board, err := h.leaderboardService.ReplaceLeaderboard(r.Context(), entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"leaderboard": board})
}
