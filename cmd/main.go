package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qapilothq/Valetudo/internal/config"
	"github.com/qapilothq/Valetudo/internal/database"
	"github.com/qapilothq/Valetudo/internal/llm"
	"github.com/qapilothq/Valetudo/internal/logger"
	"github.com/qapilothq/Valetudo/internal/migrations"
	"github.com/qapilothq/Valetudo/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.OpenAI.Key == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	var repo *database.DetectionRepository
	if cfg.Database.Host != "" {
		if err := migrations.Run(cfg, log); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatal("postgres connection failed", zap.Error(err))
		}
		defer db.Close(log)
		repo = database.NewDetectionRepository(db.DB)
	} else {
		log.Info("DB_HOST is not set, detection history disabled")
	}

	var llmLogger llm.Logger
	if repo != nil {
		llmLogger = repo
	}
	client := llm.NewClientWithRateLimit(cfg.OpenAI.Key, cfg.OpenAI.Model, llmLogger,
		cfg.OpenAI.RequestsPerMinute, cfg.OpenAI.TokensPerHour)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log, repo, client)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
