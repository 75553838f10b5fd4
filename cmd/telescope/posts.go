package main

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"github.com/jdholdren/telescope/internal/telescope"
)

func newPostsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage fetched posts",
	}

	var (
		post      telescope.Post
		published string
		updated   string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Store a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := post
			if p.GUID == "" {
				p.GUID = uuid.NewString()
			}
			if p.Text == "" {
				p.Text = textFromHTML(p.HTML)
			}

			var err error
			p.Published = time.Now().UTC()
			if published != "" {
				if p.Published, err = time.Parse(time.RFC3339, published); err != nil {
					return fmt.Errorf("error parsing --published: %s", err)
				}
			}
			if updated != "" {
				if p.Updated, err = time.Parse(time.RFC3339, updated); err != nil {
					return fmt.Errorf("error parsing --updated: %s", err)
				}
			}

			if err := a.repo.InsertPost(cmd.Context(), p); err != nil {
				return fmt.Errorf("error adding post: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
	flags := add.Flags()
	flags.StringVar(&post.GUID, "guid", "", "unique id of the post, generated when empty")
	flags.StringVar(&post.Title, "title", "", "title")
	flags.StringVar(&post.Author, "author", "", "author")
	flags.StringVar(&post.HTML, "html", "", "html body")
	flags.StringVar(&post.Text, "text", "", "plain text body, derived from --html when empty")
	flags.StringVar(&post.URL, "url", "", "link to the post")
	flags.StringVar(&post.Site, "site", "", "link to the site the post belongs to")
	flags.StringVar(&published, "published", "", "RFC 3339 publish time, defaults to now")
	flags.StringVar(&updated, "updated", "", "RFC 3339 update time")

	var (
		from, to int64
		full     bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List post guids in [from, to), newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if full {
				posts, err := a.repo.Posts(cmd.Context(), from, to)
				if err != nil {
					return fmt.Errorf("error listing posts: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), posts)
			}

			guids, err := a.repo.PostGUIDs(cmd.Context(), from, to)
			if err != nil {
				return fmt.Errorf("error listing posts: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), guids)
		},
	}
	list.Flags().Int64Var(&from, "from", 0, "index of the first post")
	list.Flags().Int64Var(&to, "to", 10, "one past the index of the last post")
	list.Flags().BoolVar(&full, "full", false, "print whole posts instead of guids")

	get := &cobra.Command{
		Use:   "get GUID",
		Short: "Print a post by guid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok, err := a.repo.Post(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error fetching post: %w", err)
			}
			if !ok {
				return fmt.Errorf("post %w", errNotFound)
			}

			return writeJSON(cmd.OutOrStdout(), p)
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.repo.CountPosts(cmd.Context())
			if err != nil {
				return fmt.Errorf("error counting posts: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), countOutput{Count: n})
		},
	}

	cmd.AddCommand(add, list, get, count)
	return cmd
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, leaving the readable text.
func textFromHTML(s string) string {
	s = stripPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}
