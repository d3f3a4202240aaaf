package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/hackathon-portal/docs" // регистрирует swagger-спеку
	"github.com/Dosada05/hackathon-portal/handlers"
	"github.com/Dosada05/hackathon-portal/middleware"
	"github.com/Dosada05/hackathon-portal/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Admin       *handlers.AdminHandler
	Mentor      *handlers.MentorHandler
	Judge       *handlers.JudgeHandler
	TeamPortal  *handlers.TeamPortalHandler
	Submission  *handlers.SubmissionHandler
	Leaderboard *handlers.LeaderboardHandler
	Health      *handlers.HealthHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         zerolog.Logger
}

func SetupRoutes(r chi.Router, h Handlers, opts Options) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.NewCORS(opts.AllowedOrigins))

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)

	r.Get("/healthz", h.Health.Health)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket: токен передаётся в ?token=
	r.Route("/ws", func(r chi.Router) {
		r.Get("/leaderboard", h.WebSocket.ServeLeaderboard)
		r.With(authenticate).Get("/teams/{teamID}", h.WebSocket.ServeTeam)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/leaderboard", h.Leaderboard.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))

				r.Post("/users", h.Admin.CreateUser)

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", h.Admin.ListTeams)
					r.Post("/", h.Admin.CreateTeam)
					r.Post("/import", h.Admin.ImportTeams)
					r.Route("/{teamID}", func(r chi.Router) {
						r.Get("/", h.Admin.GetTeam)
						r.Put("/", h.Admin.UpdateTeam)
						r.Delete("/", h.Admin.DeleteTeam)
						r.Put("/mentor", h.Mentor.AssignMentor)
						r.Delete("/mentor", h.Mentor.UnassignMentor)
						r.Put("/submissions/{round}/status", h.Submission.Review)
						r.Get("/feedback", h.Mentor.ListFeedback)
					})
				})

				r.Route("/mentors", func(r chi.Router) {
					r.Get("/", h.Mentor.ListMentors)
					r.Post("/", h.Mentor.CreateMentor)
					r.Post("/auto-assign", h.Mentor.AutoAssign)
					r.Get("/{mentorID}", h.Mentor.GetMentor)
					r.Put("/{mentorID}", h.Mentor.UpdateMentor)
					r.Delete("/{mentorID}", h.Mentor.DeleteMentor)
				})

				r.Post("/leaderboard/import", h.Leaderboard.Import)
				r.Put("/leaderboard", h.Leaderboard.Replace)
				r.Get("/analytics", h.Admin.Analytics)
			})

			r.Route("/judge", func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleJudge, models.RoleAdmin))

				r.Get("/teams", h.Judge.ListTeams)
				r.Put("/teams/{teamID}/submissions/{round}/review", h.Submission.Review)
				r.Post("/teams/{teamID}/feedback", h.Mentor.AddFeedback)
				r.Get("/teams/{teamID}/feedback", h.Mentor.ListFeedback)
				r.Get("/leaderboard", h.Leaderboard.Get)
			})

			r.Route("/mentor", func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleMentor))

				r.Get("/teams", h.Mentor.MyTeams)
				r.Post("/teams/{teamID}/feedback", h.Mentor.AddFeedback)
				r.Get("/teams/{teamID}/feedback", h.Mentor.ListFeedback)
			})

			r.Route("/team", func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleTeam))

				r.Get("/dashboard", h.TeamPortal.Dashboard)
				r.Get("/notifications", h.TeamPortal.Notifications)
				r.Post("/notifications/read-all", h.TeamPortal.MarkAllRead)
				r.Post("/notifications/{notificationID}/read", h.TeamPortal.MarkRead)
				r.Post("/submissions/{round}", h.Submission.Upload)
				r.Get("/feedback", h.Mentor.ListFeedback)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "the requested resource could not be found"}` + "\n"))
	})
}
