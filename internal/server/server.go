// Package server is the composition root: it builds services and handlers
// on top of the store, mounts them on a chi router, and runs the HTTP
// server until SIGINT or SIGTERM.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load → sqlstore.Open → server.New
//	server.New: store → services → handlers → routes
//
// Each layer only receives what it needs. Services get repository
// interfaces, handlers get services, and nothing below the handler knows
// about HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/config"
	"github.com/sakif/nutrition-tracker/internal/handler"
	"github.com/sakif/nutrition-tracker/internal/metrics"
	"github.com/sakif/nutrition-tracker/internal/middleware"
	"github.com/sakif/nutrition-tracker/internal/repository/sqlstore"
	"github.com/sakif/nutrition-tracker/internal/service"
)

// Server owns the router and the database handle. The database is closed
// when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqlstore.DB
	tokens *auth.TokenService // nil when auth is disabled
}

// New wires every layer on top of db. It fails only when the auth
// configuration is unusable.
func New(cfg config.Config, db *sqlstore.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Auth.Enabled() {
		tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("creating token service: %w", err)
		}
		s.tokens = tokens
	} else {
		logger.Warn("JWT_SECRET not set, API routes are unauthenticated")
	}

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET   /healthcheck
//	GET   /metrics
//	GET   /auth/github/login, /auth/github/callback   (GitHub configured)
//	POST  /auth/logout                               (auth enabled)
//	      /api/...                                   (RequireAuth when auth enabled)
//
// MIDDLEWARE ORDER MATTERS: RequestID must run before Logger so the id is
// logged, CORS answers preflights before auth sees them, and the rate
// limiter runs after RealIP so it keys on the client.
func (s *Server) setupRoutes() {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.InstrumentHandler)
	if origins := s.config.Server.AllowedOrigins(); len(origins) > 0 {
		s.router.Use(middleware.NewCORS(origins).Handler)
	}
	if s.config.RateLimit.RPS > 0 {
		limiter := middleware.NewRateLimiter(s.config.RateLimit.RPS, s.config.RateLimit.Burst, s.logger)
		s.router.Use(limiter.Handler)
	}

	// === Services ===
	userService := service.NewUserService(s.db, s.logger)
	foodService := service.NewFoodService(s.db, s.db, s.db, s.logger)
	goalsService := service.NewGoalsService(s.db, s.db, s.logger)
	mealPlanService := service.NewMealPlanService(s.db, s.db, s.db, s.logger)
	reportService := service.NewReportService(s.db, s.db, s.db, s.logger)

	// === Handlers ===
	healthHandler := handler.NewHealthHandler(s.db, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	foodHandler := handler.NewFoodHandler(foodService, s.logger)
	goalsHandler := handler.NewGoalsHandler(goalsService, s.logger)
	mealPlanHandler := handler.NewMealPlanHandler(mealPlanService, s.logger)
	reportHandler := handler.NewReportHandler(reportService, s.logger)

	s.router.Get("/healthcheck", healthHandler.HandleHealthcheck)
	s.router.Handle("/metrics", metrics.Handler())

	// === Auth Routes ===
	var authHandler *handler.AuthHandler
	if s.tokens != nil {
		authService := service.NewAuthService(s.db, s.tokens, s.logger)

		var github handler.GitHubClient
		if s.config.Auth.GitHubEnabled() {
			github = auth.NewGitHubProvider(
				s.config.Auth.GitHubClientID,
				s.config.Auth.GitHubClientSecret,
				s.config.Auth.GitHubCallbackURL,
			)
		}
		authHandler = handler.NewAuthHandler(github, authService, s.tokens.TTL(), s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			if github != nil {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
			r.Post("/logout", authHandler.HandleLogout)
		})
	}

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		if s.tokens != nil {
			r.Use(auth.RequireAuth(s.tokens))
			r.Get("/me", authHandler.HandleMe)
		}

		r.Post("/users", userHandler.HandleCreate)
		r.Get("/users", userHandler.HandleList)

		r.Post("/food-items", foodHandler.HandleCreateItem)
		r.Get("/food-items", foodHandler.HandleListItems)
		r.Post("/food-log", foodHandler.HandleLogFood)

		r.Post("/goals", goalsHandler.HandleCreate)
		r.Patch("/goals/{id}", goalsHandler.HandleUpdate)

		r.Post("/meal-plans", mealPlanHandler.HandleCreate)
		r.Get("/meal-plans/{planID}/items", mealPlanHandler.HandleListItems)
		r.Post("/meal-plan-items", mealPlanHandler.HandleAddItem)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/food-items", foodHandler.HandleListItemsByUser)
			r.Get("/food-log", foodHandler.HandleListLog)
			r.Get("/goals", goalsHandler.HandleHistory)
			r.Get("/goals/active", goalsHandler.HandleActive)
			r.Get("/meal-plans", mealPlanHandler.HandleListByUser)
			r.Get("/progress", reportHandler.HandleProgress)
		})
	})
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("driver", s.db.Driver()),
			slog.Bool("auth", s.tokens != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
