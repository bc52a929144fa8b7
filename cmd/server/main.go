package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/controller"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/internal/app/service"
	"github.com/venuebook/venuebook-backend/internal/db"
	"github.com/venuebook/venuebook-backend/internal/middleware"
	"github.com/venuebook/venuebook-backend/internal/router"
	"github.com/venuebook/venuebook-backend/internal/scheduler"
	"github.com/venuebook/venuebook-backend/pkg/logger"
	"github.com/venuebook/venuebook-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VENUEBOOK Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist; the server runs without it.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	venueRepo := repository.NewVenueRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	venueService := service.NewVenueService(venueRepo)
	reviewService := service.NewReviewService(reviewRepo, venueRepo)
	aggregator := service.NewRatingAggregator(reviewRepo, cfg.Search.AggregationWorkers)
	searchService := service.NewSearchService(venueRepo, aggregator, cfg.Search)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	venueController := controller.NewVenueController(searchService, venueService, cfg.Search)
	reviewController := controller.NewReviewController(reviewService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the rating snapshot refresher
	snapshotScheduler := scheduler.NewRatingSnapshotScheduler(venueRepo)
	if err := snapshotScheduler.Start(); err != nil {
		logger.Fatal("Failed to start rating snapshot scheduler", err)
	}
	defer snapshotScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		venueController,
		reviewController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
