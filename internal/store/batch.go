package store

import (
	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	apperrors "github.com/shoeboxapp/shoebox-client/internal/errors"
)

// EntryBatch collects album-entry writes and deletes and commits them as a
// single Badger write batch. Reconciliation uses one batch per run so a
// large album costs one commit, not one transaction per record.
type EntryBatch struct {
	store *Store
	batch *badger.WriteBatch
	count int
	err   error
}

// NewEntryBatch creates a batch writer for album entries.
func (s *Store) NewEntryBatch() *EntryBatch {
	return &EntryBatch{
		store: s,
		batch: s.db.NewWriteBatch(),
	}
}

// Put adds an entry upsert to the batch, including its album index key.
func (b *EntryBatch) Put(entry *domain.AlbumEntry) error {
	if b.err != nil {
		return b.err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		b.err = apperrors.Wrap(err, apperrors.CodeLocalStorage, "encode entry")
		return b.err
	}

	key := entry.Key()
	if err := b.batch.Set([]byte(entryPrefix+key), data); err != nil {
		b.err = apperrors.Wrap(err, apperrors.CodeLocalStorage, "batch set entry")
		return b.err
	}
	if err := b.batch.Set(indexKey(entryPrefix, entryAlbumIndex, entry.AlbumID, key), nil); err != nil {
		b.err = apperrors.Wrap(err, apperrors.CodeLocalStorage, "batch set entry index")
		return b.err
	}

	b.count++
	return nil
}

// Delete adds an entry removal to the batch, including its album index key.
func (b *EntryBatch) Delete(entry *domain.AlbumEntry) error {
	if b.err != nil {
		return b.err
	}

	key := entry.Key()
	if err := b.batch.Delete([]byte(entryPrefix + key)); err != nil {
		b.err = apperrors.Wrap(err, apperrors.CodeLocalStorage, "batch delete entry")
		return b.err
	}
	if err := b.batch.Delete(indexKey(entryPrefix, entryAlbumIndex, entry.AlbumID, key)); err != nil {
		b.err = apperrors.Wrap(err, apperrors.CodeLocalStorage, "batch delete entry index")
		return b.err
	}

	b.count++
	return nil
}

// Len returns the number of queued operations.
func (b *EntryBatch) Len() int {
	return b.count
}

// Flush commits all pending writes. Flushing an empty or failed batch is a
// no-op beyond returning the first recorded error.
func (b *EntryBatch) Flush() error {
	if b.err != nil {
		b.batch.Cancel()
		return b.err
	}
	if b.count == 0 {
		b.batch.Cancel()
		return nil
	}
	if err := b.batch.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "flush entry batch")
	}
	return nil
}
