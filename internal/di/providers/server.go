package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shoeboxapp/shoebox-client/internal/api"
	"github.com/shoeboxapp/shoebox-client/internal/config"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	syncengine "github.com/shoeboxapp/shoebox-client/internal/sync"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

// APIServerHandle wraps the route handler with shutdown capability.
type APIServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *APIServerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAPIServer provides the local HTTP route handler.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*syncengine.Engine](i)
	sessions := do.MustInvoke[*session.Manager](i)
	thumbCache := do.MustInvoke[*thumbs.Cache](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	remote := do.MustInvoke[*RemoteClientHandle](i)

	srv := api.NewServer(storeHandle.Store, engine, sessions, thumbCache, index.Index, remote.Client, log.Logger)

	return &APIServerHandle{Server: srv}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the listening HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*APIServerHandle](i)

	srv := &http.Server{
		Addr:         "127.0.0.1:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
