// Telescope is the admin tool for the feed store.
//
// It seeds and inspects feeds and posts in either the redis or the sqlite
// backend, picked through the environment.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/jdholdren/telescope/internal/logger"
)

type config struct {
	// Which store to use: either redis or sqlite
	Backend string `env:"STORE_BACKEND, default=redis"`

	RedisURL          string        `env:"REDIS_URL, default=redis://localhost:6379/0"`
	RedisReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT, default=3s"`
	RedisWriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT, default=3s"`

	// Path to the sqlite database file
	Database string `env:"DATABASE, default=telescope.db"`

	// How long to keep trying to reach the store on startup
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT, default=10s"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	ctx = logger.Ctx(ctx, slog.String("backend", cfg.Backend))

	a := &app{cfg: cfg}
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "error running", "error", err)
		a.close()
		os.Exit(1)
	}
}
