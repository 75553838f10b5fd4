package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jdholdren/telescope/internal/telescope"
)

type feedRow struct {
	ID   telescope.Key `db:"id"`
	Name string        `db:"name"`
	URL  string        `db:"url"`
}

func (r Repo) InsertFeed(ctx context.Context, name, url string) (telescope.Key, error) {
	key, err := telescope.FeedKey(ctx, url)
	if err != nil {
		return telescope.Key{}, err
	}

	const q = `INSERT INTO feeds (id, name, url) VALUES (:id, :name, :url)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, url = excluded.url;`
	if _, err := r.db.NamedExecContext(ctx, q, feedRow{ID: key, Name: name, URL: url}); err != nil {
		return telescope.Key{}, fmt.Errorf("error inserting feed: %w", unavailable(err))
	}

	return key, nil
}

func (r Repo) FeedKeys(ctx context.Context) ([]telescope.Key, error) {
	const q = `SELECT id FROM feeds;`

	keys := []telescope.Key{}
	if err := r.db.SelectContext(ctx, &keys, q); err != nil {
		return nil, fmt.Errorf("error listing feeds: %w", unavailable(err))
	}

	return keys, nil
}

// Feed returns false for keys of any other kind, so a post is never read back as a feed.
func (r Repo) Feed(ctx context.Context, key telescope.Key) (telescope.Feed, bool, error) {
	if key.Kind != telescope.KindFeed {
		return telescope.Feed{}, false, nil
	}

	const q = `SELECT id, name, url FROM feeds WHERE id = ?;`

	var row feedRow
	err := r.db.GetContext(ctx, &row, q, key)
	if errors.Is(err, sql.ErrNoRows) {
		return telescope.Feed{}, false, nil
	}
	if err != nil {
		return telescope.Feed{}, false, fmt.Errorf("error fetching feed: %w", unavailable(err))
	}

	return telescope.Feed{
		Key:  row.ID,
		Name: row.Name,
		URL:  row.URL,
	}, true, nil
}

func (r Repo) FeedByURL(ctx context.Context, url string) (telescope.Feed, bool, error) {
	key, err := telescope.FeedKey(ctx, url)
	if err != nil {
		return telescope.Feed{}, false, err
	}

	return r.Feed(ctx, key)
}

// CountFeeds returns the total number of feeds in the database.
func (r Repo) CountFeeds(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM feeds;`

	var count int64
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting feeds: %w", unavailable(err))
	}

	return count, nil
}
