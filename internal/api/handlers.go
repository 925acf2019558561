package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	"github.com/shoeboxapp/shoebox-client/internal/http/response"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	props, err := s.remote.FetchSettings(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, props, s.logger)
}

// SessionStatus reports whether a usable session exists.
type SessionStatus struct {
	Valid bool `json:"valid"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	response.Success(w, SessionStatus{Valid: s.sessions.IsValid()}, s.logger)
}

// TokenRequest is the identity provider callback payload.
type TokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleUpdateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if req.Token == "" {
		response.BadRequest(w, "token is required", s.logger)
		return
	}

	s.sessions.UpdateToken(req.Token)
	response.Success(w, SessionStatus{Valid: s.sessions.IsValid()}, s.logger)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout()
	response.NoContent(w)
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.store.ListAlbums(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	domain.SortAlbumsForDisplay(albums)
	response.Success(w, albums, s.logger)

	// Reconcile behind the response; the next read sees the result.
	go drain(s.engine.SyncAlbums(context.Background()))
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.engine.AlbumByID(r.Context(), chi.URLParam(r, "albumID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, album, s.logger)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")
	entries, err := s.store.ListEntriesByAlbum(r.Context(), albumID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, entries, s.logger)

	go drain(s.engine.SyncAlbumEntries(context.Background(), albumID))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	maxLength, _ := strconv.Atoi(r.URL.Query().Get("maxLength"))

	handle, err := s.thumbs.Fetch(r.Context(), chi.URLParam(r, "albumID"), chi.URLParam(r, "entryID"), maxLength)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	data := handle.Bytes()
	if data == nil {
		response.NotFound(w, "thumbnail no longer resident", s.logger)
		return
	}

	if ct := handle.ContentType(); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}

// BlurhashResult carries the placeholder hash for one entry.
type BlurhashResult struct {
	Blurhash string `json:"blurhash"`
}

func (s *Server) handleBlurhash(w http.ResponseWriter, r *http.Request) {
	// The smallest bucket is plenty for a placeholder hash.
	handle, err := s.thumbs.Fetch(r.Context(), chi.URLParam(r, "albumID"), chi.URLParam(r, "entryID"), 25)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	data := handle.Bytes()
	if data == nil {
		response.NotFound(w, "thumbnail no longer resident", s.logger)
		return
	}

	hash, err := thumbs.ComputeBlurHash(data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, BlurhashResult{Blurhash: hash}, s.logger)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	albumID := r.URL.Query().Get("album")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := s.search.Search(r.Context(), query, albumID, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// drain consumes a background sync stream so its producer can finish.
func drain[T any](ch <-chan T) {
	for range ch {
	}
}
