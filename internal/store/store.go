// Package store provides the persistent local cache over a Badger database.
// It holds album summaries, album entries, and a small key/value area for
// durable single values such as the last-known bearer token.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	apperrors "github.com/shoeboxapp/shoebox-client/internal/errors"
)

const (
	albumPrefix = "album:"
	entryPrefix = "entry:"
	kvPrefix    = "kv:"

	// entryAlbumIndex is the secondary index on an entry's album id,
	// backing range scans and bulk delete-by-album.
	entryAlbumIndex = "album"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Albums  *Entity[domain.AlbumDetails]
	Entries *Entity[domain.AlbumEntry]
}

// New creates a new Store instance at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Survive crashes without corrupting the cache
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	s.Albums = NewEntity[domain.AlbumDetails](s, albumPrefix)
	s.Entries = NewEntity[domain.AlbumEntry](s, entryPrefix).
		WithIndex(entryAlbumIndex, func(e *domain.AlbumEntry) string {
			return e.AlbumID
		})

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database")
	}
	return s.db.Close()
}

// ListAlbums reads all locally cached album summaries.
func (s *Store) ListAlbums(ctx context.Context) ([]domain.AlbumDetails, error) {
	var albums []domain.AlbumDetails
	for album, err := range s.Albums.List(ctx) {
		if err != nil {
			return nil, err
		}
		albums = append(albums, *album)
	}
	return albums, nil
}

// GetAlbum returns one cached album summary, or ErrNotFound.
func (s *Store) GetAlbum(ctx context.Context, id string) (*domain.AlbumDetails, error) {
	return s.Albums.Get(ctx, id)
}

// PutAlbum upserts one album summary.
func (s *Store) PutAlbum(ctx context.Context, album *domain.AlbumDetails) error {
	return s.Albums.Put(ctx, album.ID, album)
}

// ListEntriesByAlbum reads all cached entries of one album via the album
// index.
func (s *Store) ListEntriesByAlbum(ctx context.Context, albumID string) ([]domain.AlbumEntry, error) {
	var entries []domain.AlbumEntry
	for entry, err := range s.Entries.ListByIndex(ctx, entryAlbumIndex, albumID) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// DeleteAlbum removes the album record and all of its entries in one
// transaction.
func (s *Store) DeleteAlbum(ctx context.Context, albumID string) error {
	entries, err := s.ListEntriesByAlbum(ctx, albumID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for i := range entries {
			e := &entries[i]
			if err := txn.Delete([]byte(entryPrefix + e.Key())); err != nil {
				return err
			}
			if err := txn.Delete(indexKey(entryPrefix, entryAlbumIndex, e.AlbumID, e.Key())); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(albumPrefix + albumID))
	})
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeLocalStorage, "delete album %s", albumID)
	}

	if s.logger != nil {
		s.logger.Debug("deleted album", "album_id", albumID, "entries", len(entries))
	}
	return nil
}

// SaveToken durably stores the raw bearer token.
func (s *Store) SaveToken(token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(kvPrefix+"jwt"), []byte(token))
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "save token")
	}
	return nil
}

// LoadToken reads the stored bearer token. A missing token is not an error;
// it returns ("", false, nil).
func (s *Store) LoadToken() (string, bool, error) {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(kvPrefix + "jwt"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if apperrors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(err, apperrors.CodeLocalStorage, "load token")
	}
	return token, true, nil
}

// DeleteToken removes the stored bearer token, if any.
func (s *Store) DeleteToken() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(kvPrefix + "jwt"))
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "delete token")
	}
	return nil
}
