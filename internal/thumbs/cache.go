package thumbs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/shoeboxapp/shoebox-client/internal/errors"
	"github.com/shoeboxapp/shoebox-client/internal/session"
)

const fetchTimeout = 30 * time.Second

// Sessions gates thumbnail fetches on a valid session.
type Sessions interface {
	EnsureValidSession(ctx context.Context) *session.Session
}

// Cache resolves thumbnails memory-first, then from the blob cache, then
// from the server. Concurrent requests for the same key share one fetch.
// Evicted handles are revoked; the blob cache is never touched by eviction.
type Cache struct {
	handles  *lru.Cache[string, *Handle]
	blobs    *BlobCache
	group    singleflight.Group
	http     *http.Client
	sessions Sessions
	baseURL  string
	logger   *slog.Logger
}

// NewCache creates a cache holding at most capacity in-memory handles over
// the given blob cache.
func NewCache(capacity int, blobs *BlobCache, sessions Sessions, baseURL string, logger *slog.Logger) (*Cache, error) {
	handles, err := lru.NewWithEvict(capacity, func(_ string, h *Handle) {
		h.Revoke()
	})
	if err != nil {
		return nil, errors.Validationf("create handle cache: %v", err).WithCause(err)
	}
	return &Cache{
		handles:  handles,
		blobs:    blobs,
		http:     &http.Client{Timeout: fetchTimeout},
		sessions: sessions,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// Fetch returns a handle for one entry's thumbnail at the bucketed size.
// maxLength <= 0 requests the source-sized image.
func (c *Cache) Fetch(ctx context.Context, albumID, entryID string, maxLength int) (*Handle, error) {
	url := ThumbnailURL(c.baseURL, albumID, entryID, BucketLength(maxLength))

	if h, ok := c.handles.Get(url); ok {
		return h, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		// A concurrent caller may have populated the cache while this
		// call waited its turn.
		if h, ok := c.handles.Get(url); ok {
			return h, nil
		}
		h, err := c.load(ctx, url)
		if err != nil {
			return nil, err
		}
		c.handles.Add(url, h)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// load resolves one URL from the blob cache or the server.
func (c *Cache) load(ctx context.Context, url string) (*Handle, error) {
	data, contentType, ok, err := c.blobs.Get(url)
	if err != nil {
		return nil, err
	}
	if ok {
		return newHandle(contentType, data), nil
	}

	sess := c.sessions.EnsureValidSession(ctx)
	if sess == nil {
		return nil, errors.NotLoggedIn("thumbnail fetch needs a session")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Validationf("create thumbnail request: %v", err).WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.Raw)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Transportf("fetch thumbnail: %v", err).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Transportf("thumbnail fetch returned status %d", resp.StatusCode).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transportf("read thumbnail: %v", err).WithCause(err)
	}
	contentType = resp.Header.Get("Content-Type")

	if err := c.blobs.Save(url, contentType, data); err != nil {
		// The bytes are already in hand; losing the durable copy only
		// costs a refetch later.
		c.logger.Warn("cannot persist thumbnail", "error", err)
	}
	c.logger.Debug("fetched thumbnail", "url", url, "bytes", len(data))
	return newHandle(contentType, data), nil
}

// Len returns the number of in-memory handles.
func (c *Cache) Len() int {
	return c.handles.Len()
}

// Purge revokes every in-memory handle. Blobs stay on disk.
func (c *Cache) Purge() {
	c.handles.Purge()
}
