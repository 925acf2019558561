// Package thumbs caches entry thumbnails in two tiers: a bounded in-memory
// handle cache over a persistent filesystem blob cache. Network fetches are
// coalesced so each key is requested at most once at a time.
package thumbs

import "fmt"

const (
	// minBucket is the smallest thumbnail edge length requested from the
	// server.
	minBucket = 25
	// maxEdge bounds the requested edge length. The server treats the
	// thumbnail edge as a 16-bit quantity; larger requests get the
	// largest bucket.
	maxEdge = 1<<16 - 1
)

// ThumbnailURL builds the REST URL for one entry's thumbnail. maxLength <= 0
// requests the server's default size.
func ThumbnailURL(base, albumID, entryID string, maxLength int) string {
	if maxLength <= 0 {
		return fmt.Sprintf("%s/rest/album/%s/%s/thumbnail", base, albumID, entryID)
	}
	return fmt.Sprintf("%s/rest/album/%s/%s/thumbnail?maxLength=%d", base, albumID, entryID, maxLength)
}

// BucketLength rounds a display dimension up to the next power-of-two
// multiple of 25. Bucketing keeps the cache key space small: a handful of
// sizes instead of one per pixel width. length <= 0 passes through as 0,
// the "source size" request.
func BucketLength(length int) int {
	if length <= 0 {
		return 0
	}
	if length > maxEdge {
		length = maxEdge
	}
	result := minBucket
	for result < length {
		result <<= 1
	}
	return result
}
