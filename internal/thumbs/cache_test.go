package thumbs_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxapp/shoebox-client/internal/errors"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

type staticSessions struct {
	loggedIn bool
}

func (s *staticSessions) EnsureValidSession(context.Context) *session.Session {
	if !s.loggedIn {
		return nil
	}
	return &session.Session{Raw: "token", Expiry: time.Now().Add(time.Hour)}
}

func TestBucketLength(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{-1, 0},
		{0, 0},
		{1, 25},
		{25, 25},
		{26, 50},
		{50, 50},
		{99, 100},
		{100, 100},
		{101, 200},
		{1000, 1600},
		{65535, 102400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, thumbs.BucketLength(tt.length), "length %d", tt.length)
	}
}

func TestBucketLength_HugeInputTerminates(t *testing.T) {
	// Doubling from 25 would overflow long before reaching MaxInt; the
	// edge clamp keeps the loop bounded.
	assert.Equal(t, 102400, thumbs.BucketLength(math.MaxInt))
	assert.Equal(t, 102400, thumbs.BucketLength(1<<20))
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t,
		"https://photos.example.com/rest/album/a1/e1/thumbnail?maxLength=100",
		thumbs.ThumbnailURL("https://photos.example.com", "a1", "e1", 100))
	assert.Equal(t,
		"https://photos.example.com/rest/album/a1/e1/thumbnail",
		thumbs.ThumbnailURL("https://photos.example.com", "a1", "e1", 0))
}

func TestBlobCache_RoundTrip(t *testing.T) {
	c, err := thumbs.NewBlobCache(t.TempDir())
	require.NoError(t, err)

	const url = "https://photos.example.com/rest/album/a/e/thumbnail?maxLength=100"
	require.NoError(t, c.Save(url, "image/jpeg", []byte("jpeg-bytes")))

	data, contentType, ok, err := c.Get(url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", contentType)

	_, _, ok, err = c.Get("https://photos.example.com/other")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete(url))
	_, _, ok, err = c.Get(url)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete(url), "deleting a missing blob is not an error")
}

func setupCache(t *testing.T, capacity int, loggedIn bool) (*thumbs.Cache, *atomic.Int32) {
	t.Helper()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("thumbnail:" + r.URL.Path + "?" + r.URL.RawQuery))
	}))
	t.Cleanup(srv.Close)

	blobs, err := thumbs.NewBlobCache(t.TempDir())
	require.NoError(t, err)

	cache, err := thumbs.NewCache(capacity, blobs, &staticSessions{loggedIn: loggedIn}, srv.URL, logger.Discard().Logger)
	require.NoError(t, err)
	return cache, &requests
}

func TestCache_FetchAndMemoryHit(t *testing.T) {
	cache, requests := setupCache(t, 10, true)
	ctx := context.Background()

	h1, err := cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", h1.ContentType())
	assert.NotEmpty(t, h1.ID())
	assert.Contains(t, string(h1.Bytes()), "maxLength=100")
	assert.Equal(t, int32(1), requests.Load())

	h2, err := cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	assert.Same(t, h1, h2, "memory hit returns the shared handle")
	assert.Equal(t, int32(1), requests.Load())
}

func TestCache_FetchSourceSize(t *testing.T) {
	cache, requests := setupCache(t, 10, true)
	ctx := context.Background()

	// maxLength <= 0 asks for the source-sized image, so the URL carries
	// no maxLength parameter and the key is distinct from every bucket.
	h, err := cache.Fetch(ctx, "a1", "e1", 0)
	require.NoError(t, err)
	assert.NotContains(t, string(h.Bytes()), "maxLength")
	assert.Equal(t, int32(1), requests.Load())

	bucketed, err := cache.Fetch(ctx, "a1", "e1", 25)
	require.NoError(t, err)
	assert.NotSame(t, h, bucketed)
	assert.Equal(t, int32(2), requests.Load())
}

func TestCache_BucketsShareOneKey(t *testing.T) {
	cache, requests := setupCache(t, 10, true)
	ctx := context.Background()

	_, err := cache.Fetch(ctx, "a1", "e1", 99)
	require.NoError(t, err)
	_, err = cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load(), "99 and 100 round to the same bucket")
}

func TestCache_AtMostOneFetchPerKey(t *testing.T) {
	cache, requests := setupCache(t, 10, true)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	handles := make([]*thumbs.Handle, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := cache.Fetch(ctx, "a1", "e1", 200)
			assert.NoError(t, err)
			handles[i] = h
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), requests.Load(), "concurrent fetches must share one request")
	for _, h := range handles {
		require.NotNil(t, h)
		assert.Equal(t, handles[0].Bytes(), h.Bytes())
	}
}

func TestCache_EvictionRevokesButBlobSurvives(t *testing.T) {
	cache, requests := setupCache(t, 1, true)
	ctx := context.Background()

	h1, err := cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	_, err = cache.Fetch(ctx, "a1", "e2", 100)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
	assert.Nil(t, h1.Bytes(), "evicted handle is revoked")
	assert.Equal(t, int32(2), requests.Load())

	// The evicted thumbnail comes back from disk, not the network.
	h3, err := cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	assert.Contains(t, string(h3.Bytes()), "/rest/album/a1/e1/")
	assert.Equal(t, int32(2), requests.Load())
}

func TestCache_PurgeKeepsBlobs(t *testing.T) {
	cache, requests := setupCache(t, 10, true)
	ctx := context.Background()

	_, err := cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	cache.Purge()
	assert.Zero(t, cache.Len())

	_, err = cache.Fetch(ctx, "a1", "e1", 100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestCache_NotLoggedIn(t *testing.T) {
	cache, requests := setupCache(t, 10, false)

	_, err := cache.Fetch(context.Background(), "a1", "e1", 100)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotLoggedIn, errors.CodeOf(err))
	assert.Zero(t, requests.Load())
}

func TestComputeBlurHashAndPlaceholder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	hash, err := thumbs.ComputeBlurHash(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	placeholder, err := thumbs.Placeholder(hash, 16, 16)
	require.NoError(t, err)
	bounds := placeholder.Bounds()
	assert.Equal(t, 16, bounds.Dx())
	assert.Equal(t, 16, bounds.Dy())
}

func TestComputeBlurHash_RejectsGarbage(t *testing.T) {
	_, err := thumbs.ComputeBlurHash([]byte("not an image"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}
