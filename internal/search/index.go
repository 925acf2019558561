// Package search provides full-text search over cached album entries using
// Bleve. Entries are indexed as sync runs reconcile them, so the index is
// available offline like the rest of the cache.
package search

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	"github.com/shoeboxapp/shoebox-client/internal/errors"
)

// batchSize chunks large index batches to limit memory pressure.
const batchSize = 500

// Index wraps a Bleve index over album entries. Safe for concurrent use.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// New creates or opens the entry index at path. A corrupted index is dropped
// and recreated; the next full sync repopulates it.
func New(path string, logger *slog.Logger) (*Index, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildIndexMapping())
	} else if err != nil {
		logger.Warn("cannot open search index, recreating", "path", path, "error", err)
		if err := os.RemoveAll(path); err != nil {
			return nil, errors.LocalStoragef("remove search index: %v", err).WithCause(err)
		}
		index, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, errors.LocalStoragef("create search index: %v", err).WithCause(err)
	}

	return &Index{index: index, path: path, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEntries upserts entries into the index in batches.
func (s *Index) IndexEntries(ctx context.Context, entries []domain.AlbumEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(entries); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(entries))

		batch := s.index.NewBatch()
		for i := start; i < end; i++ {
			doc := newDocument(&entries[i])
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				return errors.LocalStoragef("index entry %s: %v", doc.ID, err).WithCause(err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return errors.LocalStoragef("commit index batch: %v", err).WithCause(err)
		}
	}
	return nil
}

// DeleteEntries removes entries by their composite keys.
func (s *Index) DeleteEntries(_ context.Context, keys []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, key := range keys {
		batch.Delete(key)
	}
	if err := s.index.Batch(batch); err != nil {
		return errors.LocalStoragef("delete from index: %v", err).WithCause(err)
	}
	return nil
}

// DocumentCount returns the number of indexed entries.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Hit is one search result.
type Hit struct {
	AlbumID string  `json:"album_id"`
	EntryID string  `json:"entry_id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
}

// Result is a full search response.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Search runs a free-text query over entry names, keywords, and camera
// models. albumID, when non-empty, restricts results to one album.
func (s *Index) Search(ctx context.Context, queryString, albumID string, limit int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	request := bleve.NewSearchRequestOptions(buildQuery(queryString, albumID), limit, 0, false)
	request.Fields = []string{"album_id", "entry_id", "name"}

	response, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, errors.LocalStoragef("search: %v", err).WithCause(err)
	}

	result := &Result{
		Query: queryString,
		Total: response.Total,
		Hits:  make([]Hit, 0, len(response.Hits)),
	}
	for _, hit := range response.Hits {
		result.Hits = append(result.Hits, Hit{
			AlbumID: stringField(hit.Fields, "album_id"),
			EntryID: stringField(hit.Fields, "entry_id"),
			Name:    stringField(hit.Fields, "name"),
			Score:   hit.Score,
		})
	}
	return result, nil
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
