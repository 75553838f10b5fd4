package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jdholdren/telescope/internal/telescope"
)

func (r Repo) InsertPost(ctx context.Context, post telescope.Post) error {
	key, err := telescope.PostKey(ctx, post.GUID)
	if err != nil {
		return err
	}

	id := key.String()
	if _, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, id, postHash(post))
		pipe.ZAdd(ctx, postsKey, goredis.Z{
			Score:  float64(post.Published.UnixMilli()),
			Member: id,
		})
		return nil
	}); err != nil {
		return fmt.Errorf("error inserting post: %w", unavailable(err))
	}

	return nil
}

func (r Repo) PostGUIDs(ctx context.Context, from, to int64) ([]string, error) {
	hashes, err := r.page(ctx, from, to)
	if err != nil {
		return nil, err
	}

	guids := make([]string, 0, len(hashes))
	for _, h := range hashes {
		guids = append(guids, h["guid"])
	}

	return guids, nil
}

func (r Repo) Posts(ctx context.Context, from, to int64) ([]telescope.Post, error) {
	hashes, err := r.page(ctx, from, to)
	if err != nil {
		return nil, err
	}

	posts := make([]telescope.Post, 0, len(hashes))
	for _, h := range hashes {
		p, err := postFromHash(h)
		if err != nil {
			return nil, fmt.Errorf("error decoding post %q: %s", h["guid"], err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

// Reads the hashes of the posts in [from, to), newest first.
func (r Repo) page(ctx context.Context, from, to int64) ([]map[string]string, error) {
	start, stop, ok := telescope.PageBounds(from, to)
	if !ok {
		return []map[string]string{}, nil
	}

	ids, err := r.rdb.ZRevRange(ctx, postsKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("error ranging posts: %w", unavailable(err))
	}
	if len(ids) == 0 {
		return []map[string]string{}, nil
	}

	cmds := make([]*goredis.MapStringStringCmd, len(ids))
	if _, err := r.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, id)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error fetching posts: %w", unavailable(err))
	}

	hashes := make([]map[string]string, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			slog.WarnContext(ctx, "indexed post has no hash", "key", ids[i])
			continue
		}
		hashes = append(hashes, h)
	}

	return hashes, nil
}

func (r Repo) CountPosts(ctx context.Context) (int64, error) {
	n, err := r.rdb.ZCard(ctx, postsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting posts: %w", unavailable(err))
	}

	return n, nil
}

func (r Repo) Post(ctx context.Context, guid string) (telescope.Post, bool, error) {
	key, err := telescope.PostKey(ctx, guid)
	if err != nil {
		return telescope.Post{}, false, err
	}

	h, err := r.rdb.HGetAll(ctx, key.String()).Result()
	if err != nil {
		return telescope.Post{}, false, fmt.Errorf("error fetching post: %w", unavailable(err))
	}
	if len(h) == 0 {
		return telescope.Post{}, false, nil
	}

	p, err := postFromHash(h)
	if err != nil {
		return telescope.Post{}, false, fmt.Errorf("error decoding post %q: %s", guid, err)
	}

	return p, true, nil
}

// Field layout of a post hash. Times are RFC 3339 in UTC, a zero time is an empty string.
func postHash(p telescope.Post) map[string]any {
	return map[string]any{
		"author":    p.Author,
		"title":     p.Title,
		"html":      p.HTML,
		"text":      p.Text,
		"published": telescope.FormatTime(p.Published),
		"updated":   telescope.FormatTime(p.Updated),
		"url":       p.URL,
		"site":      p.Site,
		"guid":      p.GUID,
	}
}

func postFromHash(h map[string]string) (telescope.Post, error) {
	published, err := telescope.ParseTime(h["published"])
	if err != nil {
		return telescope.Post{}, fmt.Errorf("error parsing published: %s", err)
	}
	updated, err := telescope.ParseTime(h["updated"])
	if err != nil {
		return telescope.Post{}, fmt.Errorf("error parsing updated: %s", err)
	}

	return telescope.Post{
		Author:    h["author"],
		Title:     h["title"],
		HTML:      h["html"],
		Text:      h["text"],
		Published: published,
		Updated:   updated,
		URL:       h["url"],
		Site:      h["site"],
		GUID:      h["guid"],
	}, nil
}
