package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxapp/shoebox-client/internal/logger"
)

func TestHeadlessPrompterSkips(t *testing.T) {
	p := NewHeadlessPrompter(logger.Discard().Logger)
	assert.Equal(t, PromptSkipped, p.PromptSilent(context.Background()))
}

func TestDialProbeOnline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer ts.Close()

	probe, err := NewDialProbe(ts.URL)
	require.NoError(t, err)
	assert.True(t, probe.Online())
}

func TestDialProbeOffline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := ts.URL
	ts.Close()

	probe, err := NewDialProbe(addr)
	require.NoError(t, err)
	probe.timeout = probeTimeout / 4
	assert.False(t, probe.Online())
}

func TestDialProbeDefaultPorts(t *testing.T) {
	probe, err := NewDialProbe("https://photos.example.org")
	require.NoError(t, err)
	assert.Equal(t, "photos.example.org:443", probe.addr)

	probe, err = NewDialProbe("http://photos.example.org")
	require.NoError(t, err)
	assert.Equal(t, "photos.example.org:80", probe.addr)
}
