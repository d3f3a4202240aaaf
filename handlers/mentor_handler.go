package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/services"
)

type MentorHandler struct {
	mentorService   services.MentorService
	feedbackService services.FeedbackService
}

func NewMentorHandler(mentorService services.MentorService, feedbackService services.FeedbackService) *MentorHandler {
	return &MentorHandler{
		mentorService:   mentorService,
		feedbackService: feedbackService,
	}
}

// --- admin ---

func (h *MentorHandler) ListMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.mentorService.ListMentors(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"mentors": mentors})
}

func (h *MentorHandler) GetMentor(w http.ResponseWriter, r *http.Request) {
	mentor, err := h.mentorService.GetMentor(r.Context(), chi.URLParam(r, "mentorID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"mentor": mentor})
}

func (h *MentorHandler) CreateMentor(w http.ResponseWriter, r *http.Request) {
	var input services.MentorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	mentor, err := h.mentorService.CreateMentor(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"mentor": mentor})
}

func (h *MentorHandler) UpdateMentor(w http.ResponseWriter, r *http.Request) {
	var input services.MentorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	mentor, err := h.mentorService.UpdateMentor(r.Context(), chi.URLParam(r, "mentorID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"mentor": mentor})
}

func (h *MentorHandler) DeleteMentor(w http.ResponseWriter, r *http.Request) {
	if err := h.mentorService.DeleteMentor(r.Context(), chi.URLParam(r, "mentorID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignMentor godoc
// @Summary  Назначить ментора команде
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    teamID path string true "Team ID"
// @Success  200 {object} models.Team
// @Failure  409 {object} map[string]interface{} "mentor at capacity"
// @Security BearerAuth
// @Router   /admin/teams/{teamID}/mentor [put]
func (h *MentorHandler) AssignMentor(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MentorID string `json:"mentorId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.mentorService.AssignMentor(r.Context(), chi.URLParam(r, "teamID"), input.MentorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *MentorHandler) UnassignMentor(w http.ResponseWriter, r *http.Request) {
	team, err := h.mentorService.UnassignMentor(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *MentorHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	result, err := h.mentorService.AutoAssign(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"result": result})
}

// --- mentor portal ---

func (h *MentorHandler) MyTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.mentorService.TeamsForMentor(r.Context(), middleware.GetMentorIDFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

// AddFeedback godoc
// @Summary  Оставить отзыв команде
// @Tags     mentor
// @Accept   json
// @Produce  json
// @Param    teamID path string                 true "Team ID"
// @Param    input  body services.FeedbackInput true "Feedback"
// @Success  201 {object} models.Feedback
// @Failure  403 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /mentor/teams/{teamID}/feedback [post]
func (h *MentorHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	author, err := currentAuthor(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	var input services.FeedbackInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fb, err := h.feedbackService.AddFeedback(r.Context(), author, chi.URLParam(r, "teamID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"feedback": fb})
}

// ListFeedback отдаёт отзывы команды; команда из URL или, для роли team, из токена.
func (h *MentorHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	viewer, err := currentAuthor(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		teamID = viewer.TeamID
	}
	if teamID == "" {
		badRequestResponse(w, r, errors.New("team id is required"))
		return
	}

	list, err := h.feedbackService.ListFeedback(r.Context(), viewer, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"feedback": list})
}
