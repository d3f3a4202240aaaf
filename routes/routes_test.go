package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/handlers"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/services"
)

const testSecret = "routes-test-secret"

type leaderboardStub struct{}

func (leaderboardStub) GetLeaderboard(context.Context) (models.Leaderboard, error) {
	return models.Leaderboard{AvgScore: "0.0"}, nil
}

func (leaderboardStub) ReplaceLeaderboard(_ context.Context, e []models.LeaderboardEntry) (models.Leaderboard, error) {
	return models.Leaderboard{Entries: e}, nil
}

func (leaderboardStub) ImportLeaderboard(context.Context, io.Reader, string) (models.Leaderboard, error) {
	return models.Leaderboard{}, nil
}

type notificationStub struct{}

func (notificationStub) GetTeamNotifications(context.Context, string) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func (notificationStub) GetDashboard(_ context.Context, teamID string) (*services.Dashboard, error) {
	return &services.Dashboard{Team: &models.Team{TeamID: teamID}}, nil
}

func (notificationStub) MarkRead(context.Context, string, string) error { return nil }

func (notificationStub) MarkAllRead(context.Context, string) (int, error) { return 0, nil }

func (notificationStub) Refresh(context.Context, *models.Team) {}

func newRouter() http.Handler {
	r := chi.NewRouter()
	SetupRoutes(r, Handlers{
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardStub{}),
		TeamPortal:  handlers.NewTeamPortalHandler(notificationStub{}),
		Health:      handlers.NewHealthHandler(nil),
	}, Options{JWTSecret: testSecret, AllowedOrigins: []string{"http://localhost:3000"}, Logger: zerolog.Nop()})
	return r
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestRoutes_Access(t *testing.T) {
	router := newRouter()
	teamToken := signToken(t, jwt.MapClaims{"user_id": 5, "role": "team", "team_id": "T1"})
	judgeToken := signToken(t, jwt.MapClaims{"user_id": 6, "role": "judge"})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public leaderboard", http.MethodGet, "/api/leaderboard", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"team dashboard without token", http.MethodGet, "/api/team/dashboard", "", http.StatusUnauthorized},
		{"team dashboard", http.MethodGet, "/api/team/dashboard", teamToken, http.StatusOK},
		{"judge on team route", http.MethodGet, "/api/team/dashboard", judgeToken, http.StatusForbidden},
		{"team on admin route", http.MethodGet, "/api/admin/analytics", teamToken, http.StatusForbidden},
		{"team on judge route", http.MethodGet, "/api/judge/leaderboard", teamToken, http.StatusForbidden},
		{"judge leaderboard", http.MethodGet, "/api/judge/leaderboard", judgeToken, http.StatusOK},
		{"garbage token", http.MethodGet, "/api/team/notifications", "not-a-jwt", http.StatusUnauthorized},
		{"unknown path", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/leaderboard", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
