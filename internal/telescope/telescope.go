// Package telescope holds the domain types for the feed store and the
// repository surfaces that the storage backends implement.
package telescope

import (
	"context"
	"time"
)

type (
	// Feed represents a feed source that posts get fetched from.
	Feed struct {
		Key  Key    `json:"key"`
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	// Post represents a single fetched post. Its identity is the GUID.
	Post struct {
		Author    string    `json:"author"`
		Title     string    `json:"title"`
		HTML      string    `json:"html"`
		Text      string    `json:"text"`
		Published time.Time `json:"published"`
		Updated   time.Time `json:"updated"`
		URL       string    `json:"url"`
		Site      string    `json:"site"`
		GUID      string    `json:"guid"`
	}

	FeedRepo interface {
		// Stores the feed and records it as a member of all feeds, returning its key.
		InsertFeed(ctx context.Context, name, url string) (Key, error)
		// Keys of every stored feed, in no particular order.
		FeedKeys(ctx context.Context) ([]Key, error)
		// Returns false if nothing is stored under the key.
		Feed(ctx context.Context, key Key) (Feed, bool, error)
		FeedByURL(ctx context.Context, url string) (Feed, bool, error)
		CountFeeds(ctx context.Context) (int64, error)
	}

	PostRepo interface {
		// Stores the post and indexes it by its published time.
		InsertPost(ctx context.Context, post Post) error
		// GUIDs of the posts in [from, to), most recently published first.
		PostGUIDs(ctx context.Context, from, to int64) ([]string, error)
		// Same page as PostGUIDs but with the whole post.
		Posts(ctx context.Context, from, to int64) ([]Post, error)
		CountPosts(ctx context.Context) (int64, error)
		// Returns false if no post with the guid is stored.
		Post(ctx context.Context, guid string) (Post, bool, error)
	}

	Repository interface {
		FeedRepo
		PostRepo
	}
)

// PageBounds turns a caller's half-open [from, to) range into the inclusive
// start and stop indexes a store expects.
//
// ok is false when the range is empty, in which case the store shouldn't be asked at all.
func PageBounds(from, to int64) (start, stop int64, ok bool) {
	if from < 0 {
		from = 0
	}
	if from >= to {
		return 0, 0, false
	}

	return from, to - 1, true
}
