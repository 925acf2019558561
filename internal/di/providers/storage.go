package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoeboxapp/shoebox-client/internal/config"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/search"
	"github.com/shoeboxapp/shoebox-client/internal/store"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the persistent album cache.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DatabasePath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the local full-text entry index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.New(cfg.SearchIndexPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Search index ready", "path", cfg.SearchIndexPath())

	return &SearchIndexHandle{Index: idx}, nil
}

// ProvideBlobCache provides the on-disk thumbnail blob cache.
func ProvideBlobCache(i do.Injector) (*thumbs.BlobCache, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return thumbs.NewBlobCache(cfg.ThumbnailPath())
}
