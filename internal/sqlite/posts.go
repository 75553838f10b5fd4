package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jdholdren/telescope/internal/telescope"
)

type postRow struct {
	ID          telescope.Key `db:"id"`
	GUID        string        `db:"guid"`
	Author      string        `db:"author"`
	Title       string        `db:"title"`
	HTML        string        `db:"html"`
	Text        string        `db:"text"`
	Published   string        `db:"published"`
	PublishedMS int64         `db:"published_ms"`
	Updated     string        `db:"updated"`
	URL         string        `db:"url"`
	Site        string        `db:"site"`
}

var postColumns = []string{"id", "guid", "author", "title", "html", "text", "published", "published_ms", "updated", "url", "site"}

func (row postRow) post() (telescope.Post, error) {
	published, err := telescope.ParseTime(row.Published)
	if err != nil {
		return telescope.Post{}, fmt.Errorf("error parsing published: %s", err)
	}
	updated, err := telescope.ParseTime(row.Updated)
	if err != nil {
		return telescope.Post{}, fmt.Errorf("error parsing updated: %s", err)
	}

	return telescope.Post{
		Author:    row.Author,
		Title:     row.Title,
		HTML:      row.HTML,
		Text:      row.Text,
		Published: published,
		Updated:   updated,
		URL:       row.URL,
		Site:      row.Site,
		GUID:      row.GUID,
	}, nil
}

func (r Repo) InsertPost(ctx context.Context, post telescope.Post) error {
	key, err := telescope.PostKey(ctx, post.GUID)
	if err != nil {
		return err
	}

	const q = `INSERT INTO posts (id, guid, author, title, html, text, published, published_ms, updated, url, site)
	VALUES (:id, :guid, :author, :title, :html, :text, :published, :published_ms, :updated, :url, :site)
	ON CONFLICT(id) DO UPDATE SET
		author = excluded.author,
		title = excluded.title,
		html = excluded.html,
		text = excluded.text,
		published = excluded.published,
		published_ms = excluded.published_ms,
		updated = excluded.updated,
		url = excluded.url,
		site = excluded.site;`
	row := postRow{
		ID:          key,
		GUID:        post.GUID,
		Author:      post.Author,
		Title:       post.Title,
		HTML:        post.HTML,
		Text:        post.Text,
		Published:   telescope.FormatTime(post.Published),
		PublishedMS: post.Published.UnixMilli(),
		Updated:     telescope.FormatTime(post.Updated),
		URL:         post.URL,
		Site:        post.Site,
	}
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("error inserting post: %w", unavailable(err))
	}

	return nil
}

func (r Repo) PostGUIDs(ctx context.Context, from, to int64) ([]string, error) {
	rows, err := r.page(ctx, from, to)
	if err != nil {
		return nil, err
	}

	guids := make([]string, 0, len(rows))
	for _, row := range rows {
		guids = append(guids, row.GUID)
	}

	return guids, nil
}

func (r Repo) Posts(ctx context.Context, from, to int64) ([]telescope.Post, error) {
	rows, err := r.page(ctx, from, to)
	if err != nil {
		return nil, err
	}

	posts := make([]telescope.Post, 0, len(rows))
	for _, row := range rows {
		p, err := row.post()
		if err != nil {
			return nil, fmt.Errorf("error decoding post %q: %s", row.GUID, err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

// Ties on published time break the same way redis does: by key, descending.
func (r Repo) page(ctx context.Context, from, to int64) ([]postRow, error) {
	start, stop, ok := telescope.PageBounds(from, to)
	if !ok {
		return []postRow{}, nil
	}

	query, args, err := sq.Select(postColumns...).
		From("posts").
		OrderBy("published_ms DESC", "id DESC").
		Limit(uint64(stop - start + 1)).
		Offset(uint64(start)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	rows := []postRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting posts: %w", unavailable(err))
	}

	return rows, nil
}

// CountPosts returns the total number of posts in the database.
func (r Repo) CountPosts(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM posts;`

	var count int64
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", unavailable(err))
	}

	return count, nil
}

func (r Repo) Post(ctx context.Context, guid string) (telescope.Post, bool, error) {
	key, err := telescope.PostKey(ctx, guid)
	if err != nil {
		return telescope.Post{}, false, err
	}

	query, args, err := sq.Select(postColumns...).From("posts").Where(sq.Eq{"id": key}).ToSql()
	if err != nil {
		return telescope.Post{}, false, fmt.Errorf("error constructing sql: %s", err)
	}

	var row postRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return telescope.Post{}, false, nil
	}
	if err != nil {
		return telescope.Post{}, false, fmt.Errorf("error fetching post: %w", unavailable(err))
	}

	p, err := row.post()
	if err != nil {
		return telescope.Post{}, false, fmt.Errorf("error decoding post %q: %s", guid, err)
	}

	return p, true, nil
}
