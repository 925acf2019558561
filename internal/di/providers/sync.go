package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoeboxapp/shoebox-client/internal/config"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	syncengine "github.com/shoeboxapp/shoebox-client/internal/sync"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

// ProvideSyncEngine provides the album reconciliation engine.
func ProvideSyncEngine(i do.Injector) (*syncengine.Engine, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	remote := do.MustInvoke[*RemoteClientHandle](i)
	sessions := do.MustInvoke[*session.Manager](i)
	index := do.MustInvoke[*SearchIndexHandle](i)

	return syncengine.New(storeHandle.Store, remote.Client, sessions, index.Index, log.Logger), nil
}

// ProvideThumbnailCache provides the two-tier thumbnail cache.
func ProvideThumbnailCache(i do.Injector) (*thumbs.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	blobs := do.MustInvoke[*thumbs.BlobCache](i)
	sessions := do.MustInvoke[*session.Manager](i)

	return thumbs.NewCache(cfg.Cache.HandleCapacity, blobs, sessions, cfg.Remote.BaseURL, log.Logger)
}
