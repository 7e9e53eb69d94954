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
	"go.uber.org/zap"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/cache"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/config"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/handlers"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories/postgres"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/services"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/utils"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
	"github.com/abdulazizuv1/yes-english-center-sub001/pkg"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	bootLogger := utils.NewLogger("development", os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.LogError(err, "Failed to load configuration")
		return err
	}

	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slogger := utils.ToSlogLogger(logger)
	logger.Info("Configuration loaded", "environment", cfg.Environment, "port", cfg.Port)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to PostgreSQL")
		return err
	}
	if err := postgres.AutoMigrate(db); err != nil {
		logger.LogError(err, "Failed to migrate schema")
		return err
	}
	logger.Info("Connected to PostgreSQL")

	var zapLogger *zap.Logger
	if cfg.IsProduction() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		zapLogger = zap.NewNop()
	}
	defer zapLogger.Sync()

	// The service scores without a cache when redis is unavailable
	var questions *cache.QuestionCache
	redisClient, err := pkg.NewRedisClient(context.Background(), cfg)
	if err != nil {
		logger.Warn("Redis unavailable, question cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		questions = cache.NewQuestionCache(cache.NewRedisCache(redisClient, zapLogger), cfg.CacheTTL)
		logger.Info("Connected to Redis")
		if cfg.CacheFlushOnStart {
			if err := questions.InvalidateAll(context.Background()); err != nil {
				logger.Warn("Failed to flush question cache", "error", err)
			}
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		return err
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(services.ServiceDeps{
		Repo:      postgres.NewRepository(db),
		Questions: questions,
		Publisher: publisher,
		Scoring:   cfg.Scoring,
		Validator: validator.New(),
		Logger:    slogger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewHandlerManager(serviceManager, logger).NewRouter()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.LogError(err, "HTTP server failed")
		return err
	case sig := <-quit:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
		return err
	}

	logger.Info("Server stopped")
	return nil
}
