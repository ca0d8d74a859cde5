package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/museloop/genflow/pkg/backend"
	"github.com/museloop/genflow/pkg/backend/gemini"
	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/redis/go-redis/v9"
)

// NewBackend builds the configured generation backend with its timeout and,
// when enabled, its response cache.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (protocol.Backend, error) {
	var generator protocol.Backend

	switch cfg.Backend.Provider {
	case "gemini":
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.Backend.APIKey,
			TextModel:  cfg.Backend.TextModel,
			ImageModel: cfg.Backend.ImageModel,
		}, logger)
		if err != nil {
			return nil, err
		}

		generator = client
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Backend.Provider)
	}

	generator = backend.WithTimeout(generator, cfg.Backend.Timeout)

	if !cfg.Cache.Enabled {
		return generator, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		logger.WarnContext(ctx, "Response cache unavailable at start-up", "addr", cfg.Cache.Addr, "error", err)
	} else {
		logger.InfoContext(ctx, "Connected to Redis", "addr", cfg.Cache.Addr, "db", cfg.Cache.DB)
	}

	return backend.Cached(generator, backend.NewRedisStore(client), cfg.Cache.TTL, logger), nil
}
