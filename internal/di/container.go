// Package di provides dependency injection configuration for the Shoebox client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shoeboxapp/shoebox-client/internal/config"
	"github.com/shoeboxapp/shoebox-client/internal/di/providers"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	syncengine "github.com/shoeboxapp/shoebox-client/internal/sync"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideBlobCache)

	// Remote access and identity
	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideSessionManager)

	// Sync and caching
	do.Provide(injector, providers.ProvideSyncEngine)
	do.Provide(injector, providers.ProvideThumbnailCache)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*thumbs.BlobCache](injector)
	_ = do.MustInvoke[*providers.RemoteClientHandle](injector)
	_ = do.MustInvoke[*session.Manager](injector)
	_ = do.MustInvoke[*syncengine.Engine](injector)
	_ = do.MustInvoke[*thumbs.Cache](injector)
	_ = do.MustInvoke[*providers.APIServerHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
