package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoeboxapp/shoebox-client/internal/config"
	"github.com/shoeboxapp/shoebox-client/internal/graphql"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/session"
)

// RemoteClientHandle wraps the GraphQL client with shutdown capability.
type RemoteClientHandle struct {
	*graphql.Client
}

// Shutdown implements do.Shutdownable.
func (h *RemoteClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRemoteClient provides the album service GraphQL client.
func ProvideRemoteClient(i do.Injector) (*RemoteClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := graphql.New(cfg.Remote.BaseURL, cfg.Remote.QueriesPerSecond, cfg.Remote.QueryTimeout, log.Logger)

	return &RemoteClientHandle{Client: client}, nil
}

// ProvideSessionManager provides the shared session manager. Sign-in is
// headless: the token arrives through the local API's session callback.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	probe, err := session.NewDialProbe(cfg.Remote.BaseURL)
	if err != nil {
		return nil, err
	}
	prompter := session.NewHeadlessPrompter(log.Logger)

	return session.NewManager(storeHandle.Store, prompter, probe, log.Logger), nil
}
