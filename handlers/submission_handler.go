package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/services"
)

// Лимит на весь запрос: файлы плюс накладные расходы multipart.
const maxUploadRequest = services.MaxFilesPerUpload*services.MaxFileSize + 1<<20

type SubmissionHandler struct {
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Upload godoc
// @Summary  Загрузить файлы заявки раунда
// @Tags     team
// @Accept   multipart/form-data
// @Produce  json
// @Param    round path     string true "IST | round-1 | round-2"
// @Param    files formData file   true "1..10 files, 25 MiB each"
// @Success  201 {object} models.Submission
// @Failure  409 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /team/submissions/{round} [post]
func (h *SubmissionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	teamID := middleware.GetTeamIDFromContext(r.Context())
	if teamID == "" {
		forbiddenResponse(w, r, "account is not linked to a team")
		return
	}
	round, err := roundFromURL(chi.URLParam(r, "round"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, "upload is too large")
			return
		}
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, closeAll, err := uploadFiles(r, "files")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer closeAll()

	sub, err := h.submissionService.Upload(r.Context(), teamID, round, files)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"submission": sub})
}

// Review godoc
// @Summary  Оценить заявку раунда (judge, admin)
// @Tags     judge
// @Accept   json
// @Produce  json
// @Param    teamID path string               true "Team ID"
// @Param    round  path string               true "IST | round-1 | round-2"
// @Param    input  body services.ReviewInput true "Review"
// @Success  200 {object} models.Submission
// @Security BearerAuth
// @Router   /judge/teams/{teamID}/submissions/{round}/review [put]
func (h *SubmissionHandler) Review(w http.ResponseWriter, r *http.Request) {
	round, err := roundFromURL(chi.URLParam(r, "round"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.ReviewInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reviewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	sub, err := h.submissionService.Review(r.Context(), chi.URLParam(r, "teamID"), round, reviewerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"submission": sub})
}
