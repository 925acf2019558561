package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/shoeboxapp/shoebox-client/internal/errors"
)

// Entity provides generic typed storage for one record kind under a key
// prefix.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a non-unique secondary index on an entity. Each record
// contributes one index key of the form
// {prefix}idx:{name}:{value}:{id}, which makes the index a pure prefix
// scan: many records may share one value.
type Index[T any] struct {
	name   string
	keyGen func(*T) string
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
	}
}

// WithIndex adds a secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

func indexKey(prefix, name, value, id string) []byte {
	return []byte(prefix + "idx:" + name + ":" + value + ":" + id)
}

func indexScanPrefix(prefix, name, value string) []byte {
	return []byte(prefix + "idx:" + name + ":" + value + ":")
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := e.prefix + id
	var entity T

	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeLocalStorage, "get record")
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return apperrors.Wrap(err, apperrors.CodeLocalStorage, "decode record")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// Put creates or replaces an entity. Index keys of a previous version are
// cleaned up when the indexed value changed.
func (e *Entity[T]) Put(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id
	data, err := json.Marshal(entity)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "encode record")
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		if len(e.indexes) > 0 {
			var old T
			item, err := txn.Get([]byte(key))
			if err == nil {
				err = item.Value(func(val []byte) error {
					return json.Unmarshal(val, &old)
				})
				if err != nil {
					return fmt.Errorf("decode previous record: %w", err)
				}
				for _, idx := range e.indexes {
					oldValue := idx.keyGen(&old)
					if oldValue != idx.keyGen(entity) {
						if err := txn.Delete(indexKey(e.prefix, idx.name, oldValue, id)); err != nil {
							return err
						}
					}
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		if err := txn.Set([]byte(key), data); err != nil {
			return err
		}
		for _, idx := range e.indexes {
			if err := txn.Set(indexKey(e.prefix, idx.name, idx.keyGen(entity), id), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "put record")
	}
	return nil
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity
// does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	err := e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
		if err != nil {
			return fmt.Errorf("decode record: %w", err)
		}

		for _, idx := range e.indexes {
			if err := txn.Delete(indexKey(e.prefix, idx.name, idx.keyGen(&entity), id)); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeLocalStorage, "delete record")
	}
	return nil
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, apperrors.Wrap(err, apperrors.CodeLocalStorage, "decode record"))
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

// ListByIndex returns an iterator over all entities whose indexed value
// matches.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		scanPrefix := indexScanPrefix(e.prefix, indexName, value)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = scanPrefix
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				id := string(it.Item().Key()[len(scanPrefix):])
				item, err := txn.Get([]byte(e.prefix + id))
				if errors.Is(err, badger.ErrKeyNotFound) {
					// Stale index key; the record wins.
					continue
				}
				if err != nil {
					yield(nil, apperrors.Wrap(err, apperrors.CodeLocalStorage, "get indexed record"))
					return err
				}

				var entity T
				err = item.Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, apperrors.Wrap(err, apperrors.CodeLocalStorage, "decode record"))
					return err
				}

				if !yield(&entity, nil) {
					return nil
				}
			}

			return nil
		})
	}
}
