package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary  Вход по email и паролю
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body services.LoginInput true "Credentials"
// @Success  200 {object} map[string]interface{}
// @Failure  401 {object} map[string]interface{}
// @Router   /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	token, user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"token": token, "user": user})
}

// currentAuthor собирает вызывающего пользователя из claims токена.
func currentAuthor(r *http.Request) (services.Author, error) {
	ctx := r.Context()
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return services.Author{}, err
	}
	role, err := middleware.GetUserRoleFromContext(ctx)
	if err != nil {
		return services.Author{}, err
	}
	return services.Author{
		UserID:   userID,
		Role:     role,
		TeamID:   middleware.GetTeamIDFromContext(ctx),
		MentorID: middleware.GetMentorIDFromContext(ctx),
	}, nil
}
