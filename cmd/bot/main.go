package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adboard/ad-directory/internal/bot"
	"github.com/adboard/ad-directory/internal/infrastructure/config"
	"github.com/adboard/ad-directory/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Service: "ad-directory-bot",
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
	})

	if cfg.Bot.Token == "" {
		log.Fatal().Msg("TG_BOT_TOKEN is not set")
	}

	b, err := bot.New(cfg.Bot.Token, bot.NewAPIClient(cfg.Bot.BackendURL), log)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram bot init failed")
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		b.Stop()
	}()

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}
