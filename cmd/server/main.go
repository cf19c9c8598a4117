package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/auth"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/cms"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/payment"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	"github.com/jafarshop/storefront/internal/service"
)

func main() {
	// Load .env if present; real env vars win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting storefront API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(db); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Redis backs cart persistence; carts degrade to in-memory without it
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, carts will not survive restarts", zap.Error(err))
		redisClient = nil
	}

	// External provider clients
	cmsClient := cms.NewClient(cfg.CMS, logger)
	authClient := auth.NewClient(cfg.Auth, logger)
	paymentClient := payment.NewClient(cfg.Payment, logger)

	// Cart and stock reconciliation
	carts := cart.NewManager(redisClient, logger)
	reconcilers := service.NewReconcilerRegistry(carts, cmsClient, logger)

	// Checkout pipeline
	customers := service.NewCustomerService(cmsClient, paymentClient, logger)
	checkout := service.NewCheckoutService(cmsClient, paymentClient, customers, cfg.BaseURL, logger)

	// Initialize router
	router := api.NewRouter(api.Dependencies{
		Config:      cfg,
		Repos:       repos,
		CMS:         cmsClient,
		Verifier:    authClient,
		Carts:       carts,
		Reconcilers: reconcilers,
		Checkout:    checkout,
		Logger:      logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
