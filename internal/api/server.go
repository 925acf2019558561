// Package api exposes the cached library to the local UI shell over HTTP.
// Read endpoints serve the local snapshot immediately and kick off
// background reconciliation; the session endpoints are the identity
// provider's callback surface.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shoeboxapp/shoebox-client/internal/graphql"
	"github.com/shoeboxapp/shoebox-client/internal/ratelimit"
	"github.com/shoeboxapp/shoebox-client/internal/search"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	"github.com/shoeboxapp/shoebox-client/internal/store"
	syncengine "github.com/shoeboxapp/shoebox-client/internal/sync"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	engine   *syncengine.Engine
	sessions *session.Manager
	thumbs   *thumbs.Cache
	search   *search.Index
	remote   *graphql.Client
	limiter  *ratelimit.KeyedRateLimiter
	router   *chi.Mux
	logger   *slog.Logger
}

// NewServer creates the local HTTP server with all routes configured.
func NewServer(st *store.Store, engine *syncengine.Engine, sessions *session.Manager, thumbCache *thumbs.Cache, index *search.Index, remote *graphql.Client, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		engine:   engine,
		sessions: sessions,
		thumbs:   thumbCache,
		search:   index,
		remote:   remote,
		limiter:  ratelimit.New(50, 100),
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.rateLimit)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/token", s.handleUpdateToken)
			r.Delete("/", s.handleLogout)
		})

		r.Route("/albums", func(r chi.Router) {
			r.Get("/", s.handleListAlbums)
			r.Get("/{albumID}", s.handleGetAlbum)
			r.Get("/{albumID}/entries", s.handleListEntries)
			r.Get("/{albumID}/{entryID}/thumbnail", s.handleThumbnail)
			r.Get("/{albumID}/{entryID}/blurhash", s.handleBlurhash)
		})

		r.Get("/search", s.handleSearch)
	})
}
