package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-survey/internal/auth"
	"meal-survey/internal/config"
	"meal-survey/internal/database"
	"meal-survey/internal/logging"
	"meal-survey/internal/metrics"
	"meal-survey/internal/server"
	"meal-survey/internal/submission"
	"meal-survey/internal/surveyapi"
	"meal-survey/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireBot(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	metricsStore := metrics.NewStore(db.SQL)

	// 3. Survey backend. Missing settings only disable submission.
	var transport submission.Transport
	client, err := surveyapi.NewClient(cfg)
	switch {
	case err == nil:
		transport = client
	case errors.Is(err, submission.ErrNotConfigured):
		logger.Warn("survey backend not configured, submissions will be refused", zap.Error(err))
	default:
		logger.Fatal("failed to create survey api client", zap.Error(err))
	}

	// 4. Telegram Bot
	registry := auth.NewRegistry(cfg.TelegramAllowedUserIDs)
	bot, err := telegram.NewBot(cfg, registry, transport, metricsStore, logger)
	if err != nil {
		logger.Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	// 5. Start Server with Graceful Shutdown
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.NewRouter(logger, bot),
	}

	go func() {
		logger.Info("survey bot listening", zap.String("port", cfg.Port), zap.String("wizard", bot.Variant().String()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
