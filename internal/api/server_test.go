package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxapp/shoebox-client/internal/domain"
	"github.com/shoeboxapp/shoebox-client/internal/graphql"
	"github.com/shoeboxapp/shoebox-client/internal/logger"
	"github.com/shoeboxapp/shoebox-client/internal/search"
	"github.com/shoeboxapp/shoebox-client/internal/session"
	"github.com/shoeboxapp/shoebox-client/internal/store"
	syncengine "github.com/shoeboxapp/shoebox-client/internal/sync"
	"github.com/shoeboxapp/shoebox-client/internal/thumbs"
)

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Issuer("accounts.example.com").
		Subject("user-1").
		Expiration(expiry).
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), []byte("test-key")))
	require.NoError(t, err)
	return string(signed)
}

type emptyAPI struct{}

func (emptyAPI) AllAlbumVersions(ctx context.Context, token string) ([]graphql.AlbumVersion, error) {
	return nil, nil
}

func (emptyAPI) GetAlbumDetails(ctx context.Context, token, albumID string) (*domain.AlbumDetails, error) {
	return nil, nil
}

func (emptyAPI) AlbumContent(ctx context.Context, token, albumID string) ([]domain.AlbumEntry, error) {
	return nil, nil
}

type quietPrompter struct{}

func (quietPrompter) PromptSilent(ctx context.Context) session.PromptOutcome {
	return session.PromptSkipped
}
func (quietPrompter) ShowSignIn() {}
func (quietPrompter) HideSignIn() {}

type online struct{}

func (online) Online() bool { return true }

type testHarness struct {
	server   *httptest.Server
	store    *store.Store
	search   *search.Index
	sessions *session.Manager
	remote   *httptest.Server
}

func setupServer(t *testing.T) *testHarness {
	t.Helper()

	log := logger.Discard().Logger

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"googleClientId":"client-1.example.com"}`))
		default:
			// Thumbnail endpoint. Echo the request path so tests can
			// assert which entry was fetched.
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("img:" + r.URL.Path))
		}
	}))
	t.Cleanup(remote.Close)

	st, err := store.New(filepath.Join(t.TempDir(), "db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.New(filepath.Join(t.TempDir(), "index"), log)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	sessions := session.NewManager(st, quietPrompter{}, online{}, log)

	blobs, err := thumbs.NewBlobCache(t.TempDir())
	require.NoError(t, err)
	thumbCache, err := thumbs.NewCache(100, blobs, sessions, remote.URL, log)
	require.NoError(t, err)

	engine := syncengine.New(st, emptyAPI{}, sessions, idx, log)
	remoteClient := graphql.New(remote.URL, 50, 5*time.Second, log)
	t.Cleanup(remoteClient.Close)

	srv := NewServer(st, engine, sessions, thumbCache, idx, remoteClient, log)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testHarness{
		server:   ts,
		store:    st,
		search:   idx,
		sessions: sessions,
		remote:   remote,
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.UnmarshalRead(resp.Body, out))
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	h := setupServer(t)

	var body struct {
		Data    map[string]string `json:"data"`
		Success bool              `json:"success"`
	}
	resp := getJSON(t, h.server.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestGetSettings(t *testing.T) {
	h := setupServer(t)

	var body struct {
		Data graphql.ClientProperties `json:"data"`
	}
	resp := getJSON(t, h.server.URL+"/api/settings", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "client-1.example.com", body.Data.GoogleClientID)
}

func TestSessionLifecycle(t *testing.T) {
	h := setupServer(t)

	var status struct {
		Data SessionStatus `json:"data"`
	}
	getJSON(t, h.server.URL+"/api/session", &status)
	assert.False(t, status.Data.Valid)

	payload, err := json.Marshal(TokenRequest{Token: signedToken(t, time.Now().Add(time.Hour))})
	require.NoError(t, err)
	resp, err := http.Post(h.server.URL+"/api/session/token", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.NoError(t, json.UnmarshalRead(resp.Body, &status))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, status.Data.Valid)

	req, err := http.NewRequest(http.MethodDelete, h.server.URL+"/api/session", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getJSON(t, h.server.URL+"/api/session", &status)
	assert.False(t, status.Data.Valid)
}

func TestUpdateTokenRejectsEmpty(t *testing.T) {
	h := setupServer(t)

	resp, err := http.Post(h.server.URL+"/api/session/token", "application/json", bytes.NewReader([]byte(`{"token":""}`)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAlbumsServesLocalSnapshot(t *testing.T) {
	h := setupServer(t)

	later := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.store.PutAlbum(context.Background(), &domain.AlbumDetails{
		ID: "a1", Name: "Older", Version: "v1", Timestamp: &earlier,
	}))
	require.NoError(t, h.store.PutAlbum(context.Background(), &domain.AlbumDetails{
		ID: "a2", Name: "Newer", Version: "v1", Timestamp: &later,
	}))

	var body struct {
		Data []domain.AlbumDetails `json:"data"`
	}
	resp := getJSON(t, h.server.URL+"/api/albums", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Newer", body.Data[0].Name)
	assert.Equal(t, "Older", body.Data[1].Name)
}

func TestGetAlbumNotFound(t *testing.T) {
	h := setupServer(t)

	resp, err := http.Get(h.server.URL + "/api/albums/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThumbnailRequiresSession(t *testing.T) {
	h := setupServer(t)

	resp, err := http.Get(h.server.URL + "/api/albums/a1/e1/thumbnail?maxLength=100")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestThumbnailServesBytes(t *testing.T) {
	h := setupServer(t)
	h.sessions.UpdateToken(signedToken(t, time.Now().Add(time.Hour)))

	resp, err := http.Get(h.server.URL + "/api/albums/a1/e1/thumbnail?maxLength=100")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "private, max-age=86400", resp.Header.Get("Cache-Control"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "img:/rest/album/a1/e1/thumbnail", buf.String())
}

func TestSearchEndpoint(t *testing.T) {
	h := setupServer(t)

	entries := []domain.AlbumEntry{
		{AlbumID: "a1", EntryID: "e1", Name: "Horse jumping", TargetWidth: 4, TargetHeight: 3},
		{AlbumID: "a1", EntryID: "e2", Name: "Dressage", TargetWidth: 4, TargetHeight: 3},
	}
	require.NoError(t, h.search.IndexEntries(context.Background(), entries))

	var body struct {
		Data search.Result `json:"data"`
	}
	resp := getJSON(t, h.server.URL+"/api/search?q=jumping", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Data.Hits, 1)
	assert.Equal(t, "e1", body.Data.Hits[0].EntryID)
}
