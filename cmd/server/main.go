package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/config"
	"occamy_tracker/internal/controllers"
	"occamy_tracker/internal/logger"
	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/routes"
	"occamy_tracker/internal/store"
	"occamy_tracker/internal/tracker"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to stdout and a rotating file
	logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration.")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	policy, err := tracker.ParseDistancePolicy(cfg.Tracking.DistancePolicy)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid distance policy.")
	}
	loc, err := cfg.Location()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid display timezone.")
	}

	activityLog, closeLog := openActivityLog(cfg.Database)
	defer closeLog()

	hub := controllers.NewActivityHub()
	defer hub.Close()

	t := tracker.New(activityLog, tracker.Options{
		Policy:    policy,
		Location:  loc,
		Publisher: hub,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup(time.Hour)
			case <-stopCleanup:
				return
			}
		}
	}()
	defer close(stopCleanup)

	r := routes.SetupRouter(routes.Dependencies{
		Tracker:        t,
		JWT:            middleware.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiration),
		Hub:            hub,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		PhotoBaseURL:   cfg.Tracking.PhotoBaseURL,
		LogWriter:      logger.Writer(),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"environment": cfg.Server.Environment,
			"policy":      policy,
			"store":       cfg.Database.Driver,
		}).Info("Server listening.")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed to start.")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown.")
	}
	logrus.Info("Server stopped.")
}

// openActivityLog returns the configured log backend and its cleanup function.
func openActivityLog(cfg config.DatabaseConfig) (store.ActivityLog, func()) {
	if cfg.Driver == "memory" {
		logrus.Warn("Using the in-memory activity log; entries are lost on restart.")
		return store.NewMemoryLog(), func() {}
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open database.")
	}
	return store.NewGormLog(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
