package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "8080"},
		Remote: RemoteConfig{
			BaseURL:          "https://photos.example.org",
			QueriesPerSecond: 10,
		},
		Cache:   CacheConfig{HandleCapacity: 100},
		Storage: StorageConfig{BasePath: "/some/path"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Remote.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Cache.HandleCapacity = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("SERVER_URL", "https://env.example.org")
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"--server-url", "https://flag.example.org", "--env-file", "/nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.org", cfg.Remote.BaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_URL", "https://photos.example.org")
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"--env-file", "/nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Cache.HandleCapacity)
	assert.Equal(t, 30*time.Second, cfg.Remote.QueryTimeout)
	assert.Equal(t, float64(10), cfg.Remote.QueriesPerSecond)
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"--server-url", "https://photos.example.org/", "--env-file", "/nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, "https://photos.example.org", cfg.Remote.BaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\nSERVER_URL=https://file.example.org\nDATA_PATH="+dir+"\n",
	), 0o644))
	t.Setenv("SERVER_URL", "")
	t.Setenv("DATA_PATH", "")

	cfg, err := Load([]string{"--env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.org", cfg.Remote.BaseURL)
}

func TestDerivedPaths(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, filepath.Join("/some/path", "db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/some/path", "thumbnails"), cfg.ThumbnailPath())
	assert.Equal(t, filepath.Join("/some/path", "search.bleve"), cfg.SearchIndexPath())
}
