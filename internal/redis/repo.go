// Package redis implements the telescope repositories on top of a redis client.
//
// Layout:
//
//	feeds            set of feed keys
//	posts            sorted set of post keys scored by published epoch millis
//	t:feed:<digest>  hash of a feed's fields
//	t:post:<digest>  hash of a post's fields
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	tserrs "github.com/jdholdren/telescope/internal/errors"
	"github.com/jdholdren/telescope/internal/telescope"
)

// Names of the registries.
const (
	feedsKey = "feeds"
	postsKey = "posts"
)

// Ensure Repo implements the Repository interface
var _ telescope.Repository = (*Repo)(nil)

// Repo reads and writes feeds and posts. The client's lifecycle belongs to
// whoever passed it in.
type Repo struct {
	rdb goredis.UniversalClient
}

func New(rdb goredis.UniversalClient) Repo {
	return Repo{rdb: rdb}
}

// Ping checks that the server is reachable.
func (r Repo) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging redis: %w", unavailable(err))
	}

	return nil
}

func unavailable(err error) error {
	return tserrs.E(err, tserrs.KindStorageUnavailable)
}
