package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/internal/db"
	"github.com/qaforum/apiserver/internal/handlers"
	"github.com/qaforum/apiserver/internal/i18n"
	"github.com/qaforum/apiserver/internal/mq"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/internal/store"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	logger     *slog.Logger
}

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	DB     *sql.DB
	Bundle *i18n.Bundle
	// Events is optional; nil disables event publishing.
	Events services.EventPublisher
	Logger *slog.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bundle, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("load message catalogs: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	deps := Dependencies{DB: dbConn, Bundle: bundle, Logger: logger}
	if broker != nil {
		deps.Events = mq.NewEventPublisher(broker, cfg.MQ.Channel)
		logger.Info("publishing events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
	}

	router, err := NewRouter(cfg, deps)
	if err != nil {
		_ = dbConn.Close()
		if broker != nil {
			_ = broker.Close()
		}
		return nil, err
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		logger:     logger,
	}, nil
}

// NewRouter wires repositories, services and handlers onto a chi router.
func NewRouter(cfg config.Config, deps Dependencies) (*chi.Mux, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if deps.DB == nil || deps.Bundle == nil {
		return nil, errors.New("database and message bundle are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	questionRepo := store.NewQuestionRepository(deps.DB)
	commentRepo := store.NewCommentRepository(deps.DB)
	userRepo := store.NewUserRepository(deps.DB)

	questionService := services.NewQuestionService(questionRepo, cfg.PageSize, deps.Events, logger)
	commentService := services.NewCommentService(commentRepo, questionRepo, deps.Events, logger)
	userService := services.NewUserService(userRepo, deps.Events, logger)

	sessions := handlers.NewSessions(cfg.Auth)
	render := handlers.NewRenderer(deps.Bundle)
	authHandler := handlers.NewAuthHandler(userService, sessions, render, logger)
	questionHandler := handlers.NewQuestionHandler(questionService, commentService, render, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(requestTimeout),
		sessions.Middleware,
	)
	router.Get("/healthz", handlers.Healthz(deps.DB))
	router.Get("/", questionHandler.ListQuestions)
	router.Route("/authors", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/question", func(r chi.Router) {
		handlers.QuestionRouter(r, questionHandler)
	})

	return router, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.broker != nil {
		if closeErr := s.broker.Close(); closeErr != nil {
			s.logger.Warn("close broker", "error", closeErr)
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
