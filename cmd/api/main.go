package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adboard/ad-directory/internal/api"
	"github.com/adboard/ad-directory/internal/infrastructure/config"
	mongorepo "github.com/adboard/ad-directory/internal/infrastructure/db/mongo"
	redisrepo "github.com/adboard/ad-directory/internal/infrastructure/db/redis"
	"github.com/adboard/ad-directory/internal/infrastructure/relay"
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
		Service: "ad-directory-api",
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
	})

	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisrepo.Connect(ctx, redisrepo.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// Event relay: broker → dispatcher → ring buffer → GET /api/events.
	buffer := relay.NewBuffer(cfg.Relay.Buffer)
	dispatcher := relay.NewDispatcher(cfg.Relay.Workers, buffer, redisrepo.NewDedupChecker(rdb), log)
	dispatcher.Start(ctx)

	consumer, err := relay.NewConsumer(cfg.Relay.URL, cfg.Relay.Exchange, cfg.Relay.Queue, []string{cfg.Relay.Binding}, log)
	if err != nil {
		// The directory keeps serving without the relay; the events endpoint
		// just stays empty.
		log.Warn().Err(err).Msg("relay consumer unavailable")
	} else {
		defer func() { _ = consumer.Close() }()
		go func() {
			if err := consumer.Run(ctx, dispatcher); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("relay consumer stopped")
			}
		}()
	}

	e := api.NewRouter(db, rdb, buffer, cfg.JWTSecret, cfg.TokenTTL, log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	log.Info().Str("port", cfg.Port).Msg("starting ad-directory API")
	if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
