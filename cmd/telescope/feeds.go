package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdholdren/telescope/internal/telescope"
)

var errNotFound = errors.New("not found")

func newFeedsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage feed sources",
	}

	add := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Store a feed and print its key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.repo.InsertFeed(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("error adding feed: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), telescope.Feed{Key: key, Name: args[0], URL: args[1]})
		},
	}

	var full bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the keys of all feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.repo.FeedKeys(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing feeds: %w", err)
			}
			if !full {
				return writeJSON(cmd.OutOrStdout(), keys)
			}

			feeds := make([]telescope.Feed, 0, len(keys))
			for _, key := range keys {
				feed, ok, err := a.repo.Feed(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("error fetching feed: %w", err)
				}
				if ok {
					feeds = append(feeds, feed)
				}
			}

			return writeJSON(cmd.OutOrStdout(), feeds)
		},
	}
	list.Flags().BoolVar(&full, "full", false, "print whole feeds instead of keys")

	var url string
	get := &cobra.Command{
		Use:   "get [KEY]",
		Short: "Print a feed by key, or by url with --url",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				feed telescope.Feed
				ok   bool
				err  error
			)
			switch {
			case url != "":
				feed, ok, err = a.repo.FeedByURL(cmd.Context(), url)
			case len(args) == 1:
				key, perr := telescope.ParseKey(args[0])
				if perr != nil {
					return fmt.Errorf("error parsing key: %w", perr)
				}
				feed, ok, err = a.repo.Feed(cmd.Context(), key)
			default:
				return errors.New("either a key or --url is required")
			}
			if err != nil {
				return fmt.Errorf("error fetching feed: %w", err)
			}
			if !ok {
				return fmt.Errorf("feed %w", errNotFound)
			}

			return writeJSON(cmd.OutOrStdout(), feed)
		},
	}
	get.Flags().StringVar(&url, "url", "", "look the feed up by its url")

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.repo.CountFeeds(cmd.Context())
			if err != nil {
				return fmt.Errorf("error counting feeds: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), countOutput{Count: n})
		},
	}

	cmd.AddCommand(add, list, get, count)
	return cmd
}
