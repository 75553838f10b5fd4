package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	tsredis "github.com/jdholdren/telescope/internal/redis"
	tssqlite "github.com/jdholdren/telescope/internal/sqlite"
	"github.com/jdholdren/telescope/internal/telescope"
)

// store is what the commands need from a backend.
type store interface {
	telescope.Repository
	Ping(ctx context.Context) error
}

var (
	_ store = tsredis.Repo{}
	_ store = tssqlite.Repo{}
)

// openStore builds the backend named in the config. The returned func releases it.
func openStore(cfg config) (store, func() error, error) {
	switch cfg.Backend {
	case "redis":
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing redis url: %s", err)
		}
		opts.ReadTimeout = cfg.RedisReadTimeout
		opts.WriteTimeout = cfg.RedisWriteTimeout

		rdb := goredis.NewClient(opts)
		return tsredis.New(rdb), rdb.Close, nil
	case "sqlite":
		dbx, err := tssqlite.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		return tssqlite.New(dbx), dbx.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

// waitReady pings the store until it answers or the timeout passes.
func waitReady(ctx context.Context, s store, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := retry.Fibonacci(ctx, 100*time.Millisecond, func(ctx context.Context) error {
		if err := s.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "store not ready", "error", err)
			return retry.RetryableError(err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("error waiting for store: %w", err)
	}

	return nil
}
