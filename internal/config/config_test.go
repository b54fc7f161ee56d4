package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TABLERO_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7420", cfg.Server.ListenAddr)
	assert.Equal(t, 64, cfg.Server.ClientBuffer)
	assert.Equal(t, 30*time.Second, cfg.Server.PingInterval)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "uuid", cfg.IDs.Format)
	assert.Equal(t, "http://127.0.0.1:7420", cfg.Client.ServerURL)
	assert.Equal(t, "#874BFD", cfg.Client.Theme.Accent)
}

func TestLoadConfigWithFile(t *testing.T) {
	path := writeConfig(t, `server:
  listen_addr: ":9000"
  ping_interval: 5s
storage:
  backend: sqlite
  sqlite_path: /tmp/b.db
  preload: true
ids:
  format: ulid
seed:
  board_name: Team
  lists: [Todo, Doing, Review, Done]
client:
  theme:
    preset: monochrome
    accent: "#FF0000"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.PingInterval)
	assert.Equal(t, 90*time.Second, cfg.Server.PongTimeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Preload)
	assert.Equal(t, "ulid", cfg.IDs.Format)
	assert.Equal(t, []string{"Todo", "Doing", "Review", "Done"}, cfg.Seed.Lists)

	// custom values win over the preset, the rest come from the preset
	assert.Equal(t, "#FF0000", cfg.Client.Theme.Accent)
	assert.Equal(t, "#808080", cfg.Client.Theme.Subtle)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: sqlite\n")
	t.Setenv("TABLERO_LISTEN_ADDR", ":1234")
	t.Setenv("TABLERO_STORAGE", "redis")
	t.Setenv("TABLERO_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TABLERO_CLIENT_BUFFER", "8")
	t.Setenv("DEBUG", "1")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":1234", cfg.Server.ListenAddr)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, 8, cfg.Server.ClientBuffer)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"unknown backend", "storage:\n  backend: mongo\n", nil},
		{"redis without url", "storage:\n  backend: redis\n", nil},
		{"unknown id format", "ids:\n  format: serial\n", nil},
		{"bad yaml", "server: [\n", nil},
		{"bad buffer", "", map[string]string{"TABLERO_CLIENT_BUFFER": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed.BoardName = "Main"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Main", loaded.Seed.BoardName)
}
