package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/graceful"
	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/router"

	// Blank-imported for their init() side effect: registering the
	// vendor's Adaptor into relay/adaptor's registry (spec.md §4.1).
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/anthropic"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/custom"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/gemini"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/ollama"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/openai"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/qwen"
	_ "github.com/Chyrain/LLMGateway/relay/adaptor/spark"
)

func main() {
	logger.SetupLogger()
	logger.Logger.Info("LLM gateway starting")

	if os.Getenv("GIN_MODE") != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("redis init failed", zap.Error(err))
	}

	if config.AdaptersConfigPath != "" {
		if err := adaptor.LoadOverrides(config.AdaptersConfigPath); err != nil {
			logger.Logger.Fatal("adapters config load failed", zap.Error(err))
		}
		logger.Logger.Info("adapters config loaded", zap.String("path", config.AdaptersConfigPath))
	}

	if err := model.InitDB(); err != nil {
		logger.Logger.Fatal("database init failed", zap.Error(err))
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.Logger.Error("failed to close database", zap.Error(err))
		}
	}()

	repo := model.NewRepository(model.DB)
	engine := router.New(repo)

	srv := &http.Server{
		Addr:    ":" + config.ServerPort,
		Handler: engine,
	}

	go func() {
		logger.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("shutdown signal received, draining")
	graceful.SetDraining()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("server shutdown error", zap.Error(err))
	}
	if err := graceful.Drain(ctx); err != nil {
		logger.Logger.Error("drain did not complete cleanly", zap.Error(err))
	}

	logger.Logger.Info("shutdown complete")
}
