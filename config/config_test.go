package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmdapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:5000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestRead_File(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":8080"
store:
  driver: memory
log:
  level: debug
  format: json
`)

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestRead_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
store:
  driver: memory
`)
	dbPath := filepath.Join(t.TempDir(), "x.db")
	t.Setenv("CMDAPI_STORE_DRIVER", "sqlite")
	t.Setenv("CMDAPI_STORE_PATH", dbPath)
	t.Setenv("CMDAPI_ADDR", ":9999")

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, dbPath, cfg.Store.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestRead_NoFile(t *testing.T) {
	t.Setenv("CMDAPI_STORE_DRIVER", "memory")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, defaultServer.Addr, cfg.Server.Addr)
}

func TestRead_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Read(writeFile(t, "store: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Read(writeFile(t, "store:\n  driver: postgres\n"))
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Read(writeFile(t, "log:\n  format: xml\n"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}
