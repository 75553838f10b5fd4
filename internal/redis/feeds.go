package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jdholdren/telescope/internal/telescope"
)

func (r Repo) InsertFeed(ctx context.Context, name, url string) (telescope.Key, error) {
	key, err := telescope.FeedKey(ctx, url)
	if err != nil {
		return telescope.Key{}, err
	}

	// Hash and membership go in together or not at all
	id := key.String()
	if _, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, id, "name", name, "url", url)
		pipe.SAdd(ctx, feedsKey, id)
		return nil
	}); err != nil {
		return telescope.Key{}, fmt.Errorf("error inserting feed: %w", unavailable(err))
	}

	return key, nil
}

func (r Repo) FeedKeys(ctx context.Context) ([]telescope.Key, error) {
	members, err := r.rdb.SMembers(ctx, feedsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing feeds: %w", unavailable(err))
	}

	keys := make([]telescope.Key, 0, len(members))
	for _, m := range members {
		key, err := telescope.ParseKey(m)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed feed member", "member", m, "error", err)
			continue
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// Feed returns false for keys of any other kind, so a post is never read back as a feed.
func (r Repo) Feed(ctx context.Context, key telescope.Key) (telescope.Feed, bool, error) {
	if key.Kind != telescope.KindFeed {
		return telescope.Feed{}, false, nil
	}

	fields, err := r.rdb.HGetAll(ctx, key.String()).Result()
	if err != nil {
		return telescope.Feed{}, false, fmt.Errorf("error fetching feed: %w", unavailable(err))
	}
	if len(fields) == 0 {
		return telescope.Feed{}, false, nil
	}

	return telescope.Feed{
		Key:  key,
		Name: fields["name"],
		URL:  fields["url"],
	}, true, nil
}

func (r Repo) FeedByURL(ctx context.Context, url string) (telescope.Feed, bool, error) {
	key, err := telescope.FeedKey(ctx, url)
	if err != nil {
		return telescope.Feed{}, false, err
	}

	return r.Feed(ctx, key)
}

func (r Repo) CountFeeds(ctx context.Context) (int64, error) {
	n, err := r.rdb.SCard(ctx, feedsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting feeds: %w", unavailable(err))
	}

	return n, nil
}
