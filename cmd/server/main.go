// Package main is the application entry point. It wires configuration,
// storage, services, adapters and the HTTP delivery layer, then runs the
// server with graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"matchday/config"
	_ "matchday/docs"
	"matchday/internal/adapters/auth"
	"matchday/internal/adapters/email"
	httpdelivery "matchday/internal/delivery/http"
	"matchday/internal/delivery/http/controllers"
	"matchday/internal/delivery/http/middleware"
	"matchday/internal/repository/postgres"
	"matchday/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// @title Matchday API
// @version 1.0
// @description Event attendance lifecycle API: RSVPs, capacity, waitlists and organizer controls.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(context.Background()); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories and the transactional attendance store.
	store := postgres.NewAttendanceStore(db)
	eventRepo := postgres.NewEventRepository(db)
	logRepo := postgres.NewAttendanceLogRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters.
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer, verifier := auth.NewJWTTokens(cfg.JWTSecret)
	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("configure mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	// Services.
	attendanceSvc := services.NewAttendanceService(store)
	eventSvc := services.NewEventService(eventRepo, store)
	sweepSvc := services.NewSweepService(store, logger)
	feedbackSvc := services.NewFeedbackService(store, logRepo, feedbackRepo)
	organizerSvc := services.NewOrganizerService(store, feedbackRepo, feedbackSvc, sweepSvc)
	authSvc := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)
	notifier := services.NewNotificationService(mailer, renderer, userRepo, eventRepo, logger)

	// Controllers and routes.
	mux := httpdelivery.NewRouter(
		verifier,
		controllers.NewAuthController(logger, authSvc),
		controllers.NewEventController(logger, eventSvc),
		controllers.NewAttendanceController(logger, attendanceSvc, logRepo, eventSvc, notifier),
		controllers.NewOrganizerController(logger, organizerSvc, notifier),
		controllers.NewFeedbackController(logger, feedbackSvc),
		controllers.NewSweepController(logger, sweepSvc, notifier, cfg.SweepToken, cfg.SweepLookahead),
	)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
