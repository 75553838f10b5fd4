package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserrs "github.com/jdholdren/telescope/internal/errors"
	"github.com/jdholdren/telescope/internal/telescope"
)

func newTestRepo(t *testing.T) Repo {
	t.Helper()

	dbx, err := Open(filepath.Join(t.TempDir(), "telescope.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	return New(dbx)
}

func testPost(guid string, published time.Time) telescope.Post {
	return telescope.Post{
		Author:    "Ada",
		Title:     "Post " + guid,
		HTML:      "<p>hello</p>",
		Text:      "hello",
		Published: published,
		Updated:   published.Add(time.Hour),
		URL:       "https://blog.example.com/" + guid,
		Site:      "https://blog.example.com",
		GUID:      guid,
	}
}

func TestInsertFeed(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	key, err := repo.InsertFeed(ctx, "Example", "https://example.com/feed/")
	require.NoError(t, err)

	feed, ok, err := repo.Feed(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, telescope.Feed{
		Key:  key,
		Name: "Example",
		URL:  "https://example.com/feed/",
	}, feed)

	keys, err := repo.FeedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []telescope.Key{key}, keys)

	// Same feed under a different spelling overwrites rather than adds
	again, err := repo.InsertFeed(ctx, "Renamed", "https://EXAMPLE.com/feed")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	count, err := repo.CountFeeds(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	feed, ok, err = repo.FeedByURL(ctx, "https://example.com/feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Renamed", feed.Name)
}

func TestFeed_Missing(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	_, ok, err := repo.FeedByURL(ctx, "https://nowhere.example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.InsertFeed(ctx, "Broken", "")
	assert.ErrorIs(t, err, tserrs.ErrInvalidIdentity)
}

func TestPosts_Ordering(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
		t1   = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		t2   = t1.Add(time.Hour)
		t3   = t2.Add(time.Hour)
	)

	require.NoError(t, repo.InsertPost(ctx, testPost("g2", t2)))
	require.NoError(t, repo.InsertPost(ctx, testPost("g3", t3)))
	require.NoError(t, repo.InsertPost(ctx, testPost("g1", t1)))

	tests := []struct {
		name     string
		from, to int64
		want     []string
	}{
		{name: "first page", from: 0, to: 2, want: []string{"g3", "g2"}},
		{name: "last page", from: 2, to: 3, want: []string{"g1"}},
		{name: "past the end", from: 1, to: 50, want: []string{"g2", "g1"}},
		{name: "from equals to", from: 1, to: 1, want: []string{}},
		{name: "from after to", from: 3, to: 1, want: []string{}},
		{name: "out of range", from: 10, to: 20, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.PostGUIDs(ctx, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	count, err := repo.CountPosts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestInsertPost_RoundTrip(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
		want = testPost("https://blog.example.com/?p=1", time.Date(2024, 2, 3, 4, 5, 6, 7000000, time.UTC))
	)

	require.NoError(t, repo.InsertPost(ctx, want))

	got, ok, err := repo.Post(ctx, want.GUID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	posts, err := repo.Posts(ctx, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []telescope.Post{want}, posts)

	// Re-inserting with a new published time moves it in the index
	want.Title = "Edited"
	want.Published = want.Published.Add(-24 * time.Hour)
	require.NoError(t, repo.InsertPost(ctx, want))
	require.NoError(t, repo.InsertPost(ctx, testPost("newer", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))))

	guids, err := repo.PostGUIDs(ctx, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", want.GUID}, guids)

	_, ok, err = repo.Post(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageUnavailable(t *testing.T) {
	dbx, err := Open(filepath.Join(t.TempDir(), "telescope.db"))
	require.NoError(t, err)
	repo := New(dbx)
	require.NoError(t, dbx.Close())

	ctx := context.Background()

	_, err = repo.InsertFeed(ctx, "Example", "https://example.com/feed")
	assert.ErrorIs(t, err, tserrs.ErrStorageUnavailable)

	err = repo.InsertPost(ctx, testPost("g1", time.Now()))
	assert.ErrorIs(t, err, tserrs.ErrStorageUnavailable)

	_, err = repo.PostGUIDs(ctx, 0, 10)
	assert.ErrorIs(t, err, tserrs.ErrStorageUnavailable)

	_, err = repo.CountFeeds(ctx)
	assert.ErrorIs(t, err, tserrs.ErrStorageUnavailable)

	assert.ErrorIs(t, repo.Ping(ctx), tserrs.ErrStorageUnavailable)
}

func TestFeed_PostKey(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	require.NoError(t, repo.InsertPost(ctx, testPost("g1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	postKey, err := telescope.PostKey(ctx, "g1")
	require.NoError(t, err)

	feed, ok, err := repo.Feed(ctx, postKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, telescope.Feed{}, feed)
}
