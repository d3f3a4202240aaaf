package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/hackathon-portal/config"
	"github.com/Dosada05/hackathon-portal/db"
	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/handlers"
	"github.com/Dosada05/hackathon-portal/logger"
	"github.com/Dosada05/hackathon-portal/notify"
	"github.com/Dosada05/hackathon-portal/readstate"
	"github.com/Dosada05/hackathon-portal/repositories"
	api "github.com/Dosada05/hackathon-portal/routes"
	"github.com/Dosada05/hackathon-portal/services"
	"github.com/Dosada05/hackathon-portal/storage"
)

// Прочитанные уведомления хранятся в Redis не дольше длительности хакатона с запасом.
const readStateTTL = 60 * 24 * time.Hour

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Configuration loaded")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Application stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Application exited")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}()
	log.Info().Msg("Database connection established")

	if cfg.Database.MigrateOnStart {
		version, err := db.Migrate(dbConn)
		if err != nil {
			return err
		}
		log.Info().Uint("version", version).Msg("Database migrations applied")
	}

	deadlines, err := cfg.Rounds.Deadlines()
	if err != nil {
		return err
	}

	// Состояние прочтения: Redis, если настроен, иначе память процесса.
	healthChecks := map[string]handlers.Pinger{"postgres": dbConn}
	var readState readstate.Store = readstate.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client, err := readstate.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		readState = readstate.NewRedisStore(client, readStateTTL)
		healthChecks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis read-state store connected")
	} else {
		log.Warn().Msg("REDIS_ADDR is not set, notification read-state is kept in memory")
	}

	uploader, err := storage.New(cfg.Storage, log.With().Str("component", "storage").Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	log.Info().Str("driver", cfg.Storage.Driver).Str("bucket", cfg.Storage.BucketName).Msg("File storage initialized")

	// События: WebSocket-комнаты и, если задан URL, обменник RabbitMQ.
	hub := events.NewHub(log.With().Str("component", "ws-hub").Logger())
	publishers := events.Multi{hub}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log.With().Str("component", "rabbitmq").Logger())
		if err != nil {
			return err
		}
		defer rabbit.Close()
		publishers = append(publishers, rabbit)
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("RabbitMQ publisher connected")
	}

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	mentorRepo := repositories.NewPostgresMentorRepository(dbConn)
	feedbackRepo := repositories.NewPostgresFeedbackRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)

	// Инициализация сервисов
	notificationService := services.NewNotificationService(teamRepo, mentorRepo, readState, publishers, notify.Deadlines(deadlines), nil, log)
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL, nil)
	teamService := services.NewTeamService(teamRepo, notificationService, nil, log)
	mentorService := services.NewMentorService(mentorRepo, teamRepo, notificationService, publishers, nil, log)
	submissionService := services.NewSubmissionService(teamRepo, uploader, notificationService, publishers, nil, log)
	feedbackService := services.NewFeedbackService(feedbackRepo, teamRepo, publishers, nil, log)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, teamRepo, notificationService, publishers, nil, log)
	importService := services.NewImportService(teamRepo, log)
	analyticsService := services.NewAnalyticsService(teamRepo, mentorRepo, feedbackRepo)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Admin:       handlers.NewAdminHandler(authService, teamService, importService, analyticsService),
		Mentor:      handlers.NewMentorHandler(mentorService, feedbackService),
		Judge:       handlers.NewJudgeHandler(teamService),
		TeamPortal:  handlers.NewTeamPortalHandler(notificationService),
		Submission:  handlers.NewSubmissionHandler(submissionService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Health:      handlers.NewHealthHandler(healthChecks),
		WebSocket:   handlers.NewWebSocketHandler(hub, cfg.CORS.AllowedOrigins, log),
	}, api.Options{
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("address", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Dur("timeout", cfg.Server.ShutdownTimeout).Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info().Msg("Server shutdown complete")
		return nil
	})

	return g.Wait()
}
