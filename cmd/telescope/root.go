package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// app holds the store shared by every command. It's opened lazily so that
// help output doesn't need a live backend.
type app struct {
	cfg    config
	repo   store
	closer func() error
}

func (a *app) open(ctx context.Context) error {
	if a.repo != nil {
		return nil
	}

	repo, closer, err := openStore(a.cfg)
	if err != nil {
		return err
	}
	if err := waitReady(ctx, repo, a.cfg.ConnectTimeout); err != nil {
		closer()
		return err
	}

	a.repo, a.closer = repo, closer
	return nil
}

func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		slog.Error("error closing store", "error", err)
	}
	a.closer = nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "telescope",
		Short:         "Seed and inspect the feed store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.AddCommand(
		newFeedsCmd(a),
		newPostsCmd(a),
	)

	return root
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("error encoding json output: %s", err)
	}

	return nil
}

type countOutput struct {
	Count int64 `json:"count"`
}
