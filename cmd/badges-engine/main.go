package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	badges "github.com/matehackers/badges-engine"
	"github.com/matehackers/badges-engine/adapters/events"
	"github.com/matehackers/badges-engine/adapters/store"
	"github.com/matehackers/badges-engine/config"
	"github.com/matehackers/badges-engine/internal/database"
	"github.com/matehackers/badges-engine/internal/logging"
	"github.com/matehackers/badges-engine/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx := context.Background()

	if cfg.Trace.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, cfg.Trace.Endpoint)
		if err != nil {
			log.Fatalf("Failed to set up tracing: %v", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.Error("failed to shut down tracing", slog.String("error", err.Error()))
			}
		}()
	}

	opts := []badges.Option{badges.WithLogger(logger)}

	// Redis client is shared by the Redis store and the Watermill publisher
	var redisClient *redis.Client
	if cfg.Server.Store == config.StoreRedis || cfg.Server.Events == config.EventsRedis {
		redisOpts, err := redis.ParseURL(cfg.Server.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	switch cfg.Server.Store {
	case config.StoreRedis:
		opts = append(opts,
			badges.WithStore(store.NewRedisStore(redisClient)),
			badges.WithBadges(store.NewRedisBadges(redisClient)),
			badges.WithUsers(store.NewRedisUsers(redisClient)),
		)

	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Server.PostgresDsn)
		if err != nil {
			log.Fatalf("Failed to connect database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		opts = append(opts,
			badges.WithStore(store.NewGormStore(db)),
			badges.WithBadges(store.NewGormBadges(db)),
			badges.WithUsers(store.NewGormUsers(db, cfg.Server.UsersTable, cfg.Server.UsersEmailColumn)),
		)

	default:
		logger.Warn("using in-memory store, assertions are lost on restart")
	}

	if cfg.Server.Events == config.EventsRedis {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewSlogLogger(logger),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		defer publisher.Close()

		opts = append(opts, badges.WithEventPublisher(events.NewWatermillPublisher(publisher)))
	}

	engine, err := badges.New(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	router := engine.Router()

	logger.Info("starting badges engine",
		slog.String("addr", cfg.Server.Addr),
		slog.String("store", cfg.Server.Store),
	)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
