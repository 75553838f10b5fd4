package telescope

import (
	"context"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/purell"

	tserrs "github.com/jdholdren/telescope/internal/errors"
)

// Kind is the type of entity a key points at.
type Kind uint8

const (
	KindFeed Kind = iota + 1
	KindPost
)

const (
	feedNamespace = "t:feed:"
	postNamespace = "t:post:"
)

func (k Kind) String() string {
	switch k {
	case KindFeed:
		return "feed"
	case KindPost:
		return "post"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) namespace() string {
	switch k {
	case KindFeed:
		return feedNamespace
	case KindPost:
		return postNamespace
	default:
		return ""
	}
}

// Key identifies a stored feed or post.
//
// It only becomes a string at the storage boundary, see [Key.String].
type Key struct {
	Kind   Kind
	Digest [sha256.Size]byte
}

// String serializes the key as the namespace followed by the base64 digest,
// e.g. "t:feed:3q2+7w...".
func (k Key) String() string {
	return k.Kind.namespace() + base64.StdEncoding.EncodeToString(k.Digest[:])
}

func (k Key) IsZero() bool {
	return k == Key{}
}

// ParseKey is the inverse of [Key.String].
func ParseKey(s string) (Key, error) {
	var (
		kind    Kind
		encoded string
	)
	switch {
	case strings.HasPrefix(s, feedNamespace):
		kind, encoded = KindFeed, strings.TrimPrefix(s, feedNamespace)
	case strings.HasPrefix(s, postNamespace):
		kind, encoded = KindPost, strings.TrimPrefix(s, postNamespace)
	default:
		return Key{}, fmt.Errorf("unknown key namespace: %q", s)
	}

	digest, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Key{}, fmt.Errorf("error decoding key digest: %s", err)
	}
	if len(digest) != sha256.Size {
		return Key{}, fmt.Errorf("key digest is %d bytes, expected %d", len(digest), sha256.Size)
	}

	k := Key{Kind: kind}
	copy(k.Digest[:], digest)
	return k, nil
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}

// Value lets keys be written straight into sql columns.
func (k Key) Value() (driver.Value, error) {
	return k.String(), nil
}

func (k *Key) Scan(src any) error {
	switch src := src.(type) {
	case string:
		return k.UnmarshalText([]byte(src))
	case []byte:
		return k.UnmarshalText(src)
	default:
		return fmt.Errorf("cannot scan %T into a key", src)
	}
}

// FeedKey derives the key for a feed from its url.
func FeedKey(ctx context.Context, url string) (Key, error) {
	return DeriveKey(ctx, url, KindFeed)
}

// PostKey derives the key for a post from its guid.
func PostKey(ctx context.Context, guid string) (Key, error) {
	return DeriveKey(ctx, guid, KindPost)
}

// DeriveKey maps an identity to its key. Feed urls are normalized first so
// that urls pointing at the same place share a key; post guids are hashed as-is.
//
// Failures are logged with the offending input and returned as
// [tserrs.KindInvalidIdentity] errors.
func DeriveKey(ctx context.Context, raw string, kind Kind) (Key, error) {
	processed := raw
	var err error
	switch kind {
	case KindFeed:
		processed, err = NormalizeFeedURL(raw)
	case KindPost:
		if raw == "" {
			err = fmt.Errorf("empty guid")
		}
	default:
		err = fmt.Errorf("unknown kind: %s", kind)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error deriving key", "input", raw, "kind", kind, "error", err)
		return Key{}, tserrs.E(err, tserrs.KindInvalidIdentity, tserrs.Input(raw))
	}

	return Key{
		Kind:   kind,
		Digest: sha256.Sum256([]byte(processed)),
	}, nil
}

const normalizeFlags = purell.FlagsSafe |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveWWW |
	purell.FlagRemoveTrailingSlash

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeFeedURL canonicalizes a feed url: scheme and host are lowercased,
// default ports, fragments, "www." and utm_* parameters are dropped, the query
// is sorted and trailing slashes are removed. A missing scheme becomes http.
//
// Query pairs are kept byte for byte, including ones url.ParseQuery would reject.
func NormalizeFeedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "http:" + raw
	case !schemePattern.MatchString(raw):
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("error parsing url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host")
	}

	u.RawQuery = canonicalQuery(u.RawQuery)

	return purell.NormalizeURL(u, normalizeFlags), nil
}

// Drops empty and utm_* pairs from a raw query and sorts the rest.
//
// purell's query sorting goes through url.Values, which loses pairs it can't
// parse, so sorting happens here on the raw pairs instead.
func canonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}

	var kept []string
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		name, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(name); err == nil {
			name = unescaped
		}
		if strings.HasPrefix(strings.ToLower(name), "utm_") {
			continue
		}
		kept = append(kept, pair)
	}
	slices.Sort(kept)

	return strings.Join(kept, "&")
}
