package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tsredis "github.com/jdholdren/telescope/internal/redis"
	"github.com/jdholdren/telescope/internal/telescope"
)

func newTestApp(t *testing.T) *app {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &app{repo: tsredis.New(rdb)}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestFeedsCommands(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "feeds", "add", "Example", "https://example.com/feed")
	require.NoError(t, err)
	var added telescope.Feed
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Example", added.Name)

	out, err = run(t, a, "feeds", "list")
	require.NoError(t, err)
	var keys []telescope.Key
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	assert.Equal(t, []telescope.Key{added.Key}, keys)

	out, err = run(t, a, "feeds", "get", added.Key.String())
	require.NoError(t, err)
	var got telescope.Feed
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, added, got)

	out, err = run(t, a, "feeds", "get", "--url", "https://EXAMPLE.com/feed/")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, added, got)

	out, err = run(t, a, "feeds", "count")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 1}`, out)

	_, err = run(t, a, "feeds", "get", "--url", "https://other.example.com")
	assert.ErrorIs(t, err, errNotFound)

	_, err = run(t, a, "feeds", "get", "not-a-key")
	assert.Error(t, err)
}

func TestPostsCommands(t *testing.T) {
	a := newTestApp(t)

	for i, guid := range []string{"g1", "g2", "g3"} {
		published := time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC).Format(time.RFC3339)
		_, err := run(t, a, "posts", "add", "--guid", guid, "--title", guid, "--published", published)
		require.NoError(t, err)
	}

	out, err := run(t, a, "posts", "list", "--from", "0", "--to", "2")
	require.NoError(t, err)
	assert.JSONEq(t, `["g3", "g2"]`, out)

	out, err = run(t, a, "posts", "list", "--from", "2", "--to", "3")
	require.NoError(t, err)
	assert.JSONEq(t, `["g1"]`, out)

	out, err = run(t, a, "posts", "count")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 3}`, out)

	out, err = run(t, a, "posts", "list", "--full", "--to", "1")
	require.NoError(t, err)
	var posts []telescope.Post
	require.NoError(t, json.Unmarshal([]byte(out), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "g3", posts[0].GUID)

	_, err = run(t, a, "posts", "get", "nope")
	assert.ErrorIs(t, err, errNotFound)

	// A post key isn't a feed
	postKey, err := telescope.PostKey(context.Background(), "g1")
	require.NoError(t, err)
	_, err = run(t, a, "feeds", "get", postKey.String())
	assert.ErrorIs(t, err, errNotFound)
}

func TestPostsAdd_Defaults(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "posts", "add", "--html", "<p>Fish &amp; <b>chips</b></p>")
	require.NoError(t, err)

	var added telescope.Post
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.NotEmpty(t, added.GUID)
	assert.Equal(t, "Fish & chips", added.Text)
	assert.False(t, added.Published.IsZero())

	out, err = run(t, a, "posts", "get", added.GUID)
	require.NoError(t, err)
	var got telescope.Post
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, added.Text, got.Text)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, _, err := openStore(config{Backend: "etcd"})
	assert.Error(t, err)
}

func TestWaitReady_Timeout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	err := waitReady(context.Background(), tsredis.New(rdb), 300*time.Millisecond)
	assert.Error(t, err)
}
