package sync

import (
	"context"
	"log/slog"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	"github.com/shoeboxapp/shoebox-client/internal/errors"
	"github.com/shoeboxapp/shoebox-client/internal/graphql"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	"github.com/shoeboxapp/shoebox-client/internal/store"
)

// channelCapacity bounds each progress stream. Slow consumers throttle the
// producer instead of growing a queue.
const channelCapacity = 10

// API is the subset of the GraphQL client the engine needs.
type API interface {
	AllAlbumVersions(ctx context.Context, token string) ([]graphql.AlbumVersion, error)
	GetAlbumDetails(ctx context.Context, token, albumID string) (*domain.AlbumDetails, error)
	AlbumContent(ctx context.Context, token, albumID string) ([]domain.AlbumEntry, error)
}

// Sessions provides the valid-session gate for network calls.
type Sessions interface {
	EnsureValidSession(ctx context.Context) *session.Session
}

// Indexer receives entry changes for the local search index. Indexing is
// best-effort: failures are logged, never propagated into a sync stream.
type Indexer interface {
	IndexEntries(ctx context.Context, entries []domain.AlbumEntry) error
	DeleteEntries(ctx context.Context, keys []string) error
}

// Engine reconciles the persistent store against the server.
type Engine struct {
	store    *store.Store
	api      API
	sessions Sessions
	index    Indexer
	logger   *slog.Logger
}

// New creates a sync engine. index may be nil to disable search indexing.
func New(st *store.Store, api API, sessions Sessions, index Indexer, logger *slog.Logger) *Engine {
	return &Engine{
		store:    st,
		api:      api,
		sessions: sessions,
		index:    index,
		logger:   logger,
	}
}

// SyncAlbums reconciles the album list. The stream opens with the local
// snapshot; without a session it ends there and local state stands. With a
// session, albums whose version stamp matches are reused without a network
// call, mismatched or unknown albums are fetched and persisted, and albums
// the server no longer reports are deleted together with their entries.
func (e *Engine) SyncAlbums(ctx context.Context) <-chan Progress[[]domain.AlbumDetails] {
	ch := make(chan Progress[[]domain.AlbumDetails], channelCapacity)
	go func() {
		defer close(ch)
		if err := e.syncAlbums(ctx, ch); err != nil {
			e.logger.Warn("album sync failed", "error", err)
			send(ctx, ch, failureOf[[]domain.AlbumDetails](err))
		}
	}()
	return ch
}

func (e *Engine) syncAlbums(ctx context.Context, ch chan<- Progress[[]domain.AlbumDetails]) error {
	local, err := e.store.ListAlbums(ctx)
	if err != nil {
		return err
	}
	if !send(ctx, ch, snapshotOf(local)) {
		return nil
	}

	sess := e.sessions.EnsureValidSession(ctx)
	if sess == nil {
		return nil
	}

	versions, err := e.api.AllAlbumVersions(ctx, sess.Raw)
	if err != nil {
		return err
	}

	working := make(map[string]*domain.AlbumDetails, len(local))
	for i := range local {
		working[local[i].ID] = &local[i]
	}

	albums := make([]domain.AlbumDetails, 0, len(versions))
	total := len(versions)
	for idx, v := range versions {
		cached, ok := working[v.ID]
		delete(working, v.ID)
		if ok && cached.Version == v.Version {
			albums = append(albums, *cached)
			continue
		}
		if !send(ctx, ch, fractionOf[[]domain.AlbumDetails](float64(idx)/float64(total))) {
			return nil
		}
		fetched, err := e.fetchAlbum(ctx, sess.Raw, v.ID)
		if err != nil {
			return err
		}
		if fetched != nil {
			albums = append(albums, *fetched)
		}
	}

	if !send(ctx, ch, snapshotOf(albums)) {
		return nil
	}

	// Whatever is left locally vanished from the server.
	for id := range working {
		if err := e.removeAlbum(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// fetchAlbum retrieves one album's details and persists them. A nil result
// means the server does not know the album.
func (e *Engine) fetchAlbum(ctx context.Context, token, albumID string) (*domain.AlbumDetails, error) {
	album, err := e.api.GetAlbumDetails(ctx, token, albumID)
	if err != nil || album == nil {
		return nil, err
	}
	if err := e.store.PutAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// removeAlbum deletes an album, its entries, and their search index rows.
func (e *Engine) removeAlbum(ctx context.Context, albumID string) error {
	entries, err := e.store.ListEntriesByAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := e.store.DeleteAlbum(ctx, albumID); err != nil {
		return err
	}
	e.logger.Info("removed album no longer on server", "album", albumID)

	if e.index != nil && len(entries) > 0 {
		keys := make([]string, len(entries))
		for i := range entries {
			keys[i] = entries[i].Key()
		}
		if err := e.index.DeleteEntries(ctx, keys); err != nil {
			e.logger.Warn("cannot remove entries from search index", "album", albumID, "error", err)
		}
	}
	return nil
}

// SyncAlbumEntries reconciles the content of one album. There is no version
// stamp at entry granularity, so "unchanged" means full structural equality.
// Changed entries are upserted in one batch, vanished entries deleted in
// another; progress is emitted roughly once per percent of the total.
func (e *Engine) SyncAlbumEntries(ctx context.Context, albumID string) <-chan Progress[[]domain.AlbumEntry] {
	ch := make(chan Progress[[]domain.AlbumEntry], channelCapacity)
	go func() {
		defer close(ch)
		if err := e.syncAlbumEntries(ctx, albumID, ch); err != nil {
			e.logger.Warn("entry sync failed", "album", albumID, "error", err)
			send(ctx, ch, failureOf[[]domain.AlbumEntry](err))
		}
	}()
	return ch
}

func (e *Engine) syncAlbumEntries(ctx context.Context, albumID string, ch chan<- Progress[[]domain.AlbumEntry]) error {
	local, err := e.store.ListEntriesByAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if !send(ctx, ch, snapshotOf(local)) {
		return nil
	}

	sess := e.sessions.EnsureValidSession(ctx)
	if sess == nil {
		return nil
	}

	// The call happens even when the local list is empty: a truly empty
	// album and a never-fetched one look the same locally.
	fetched, err := e.api.AlbumContent(ctx, sess.Raw, albumID)
	if err != nil {
		return err
	}

	existing := make(map[string]*domain.AlbumEntry, len(local))
	for i := range local {
		existing[local[i].EntryID] = &local[i]
	}

	total := len(fetched)
	stride := max(1, total/100)
	found := make([]domain.AlbumEntry, 0, total)
	var modified []domain.AlbumEntry
	for idx := range fetched {
		if idx%stride == 0 {
			if !send(ctx, ch, fractionOf[[]domain.AlbumEntry](float64(idx)/float64(total))) {
				return nil
			}
		}
		entry := fetched[idx]
		cached, ok := existing[entry.EntryID]
		delete(existing, entry.EntryID)
		if !ok || !entry.Equal(cached) {
			modified = append(modified, entry)
		}
		found = append(found, entry)
	}

	if !send(ctx, ch, snapshotOf(found)) {
		return nil
	}

	if len(modified) > 0 {
		batch := e.store.NewEntryBatch()
		for i := range modified {
			if err := batch.Put(&modified[i]); err != nil {
				return err
			}
		}
		if err := batch.Flush(); err != nil {
			return err
		}
	}

	var vanished []string
	if len(existing) > 0 {
		batch := e.store.NewEntryBatch()
		for _, entry := range existing {
			vanished = append(vanished, entry.Key())
			if err := batch.Delete(entry); err != nil {
				return err
			}
		}
		if err := batch.Flush(); err != nil {
			return err
		}
	}

	e.reindex(ctx, albumID, modified, vanished)
	return nil
}

func (e *Engine) reindex(ctx context.Context, albumID string, modified []domain.AlbumEntry, vanished []string) {
	if e.index == nil {
		return
	}
	if len(modified) > 0 {
		if err := e.index.IndexEntries(ctx, modified); err != nil {
			e.logger.Warn("cannot index entries", "album", albumID, "error", err)
		}
	}
	if len(vanished) > 0 {
		if err := e.index.DeleteEntries(ctx, vanished); err != nil {
			e.logger.Warn("cannot remove entries from search index", "album", albumID, "error", err)
		}
	}
}

// AlbumByID returns one album, fetching and persisting it when it is not
// cached locally. Without a session a cache miss surfaces as not found.
func (e *Engine) AlbumByID(ctx context.Context, albumID string) (*domain.AlbumDetails, error) {
	album, err := e.store.GetAlbum(ctx, albumID)
	if err == nil {
		return album, nil
	}
	if errors.CodeOf(err) != errors.CodeNotFound {
		return nil, err
	}

	sess := e.sessions.EnsureValidSession(ctx)
	if sess == nil {
		return nil, errors.NotFoundf("album %s not cached and no session", albumID)
	}
	fetched, err := e.fetchAlbum(ctx, sess.Raw, albumID)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		return nil, errors.NotFoundf("album %s does not exist", albumID)
	}
	return fetched, nil
}
