package emsquery

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emsquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user: analyst
password: from-file
system_id: "1"
timeout: 30s
max_reconnects: 5
`), 0o600))

	t.Setenv("EMSQUERY_TEST_PASSWORD", "from-env")
	t.Setenv("EMSQUERY_TEST_PAGE_SIZE", "500")

	cfg, err := LoadConfig(path, "EMSQUERY_TEST_")
	require.NoError(t, err)

	assert.Equal(t, "analyst", cfg.User)
	assert.Equal(t, "from-env", cfg.Password)
	assert.Equal(t, "1", cfg.SystemID)
	assert.Equal(t, DefaultDatabaseID, cfg.DatabaseID)
	assert.Equal(t, 500, cfg.PageSize)
	assert.Equal(t, 5, cfg.MaxReconnects)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClientConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{name: "missing system", cfg: ClientConfig{User: "u", Password: "p"}},
		{name: "negative page size", cfg: ClientConfig{User: "u", Password: "p", SystemID: "1", PageSize: -1}},
		{name: "missing credentials", cfg: ClientConfig{SystemID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestClientConfigDefaults(t *testing.T) {
	level := slog.LevelDebug
	cfg, err := ClientConfig{SystemID: "1", LogLevel: &level}.withDefaults()
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseID, cfg.DatabaseID)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.NotNil(t, cfg.Allocator)
	require.NotNil(t, cfg.Logger)
	assert.NotSame(t, slog.Default(), cfg.Logger)
}

func TestNewClientWithRequesterNil(t *testing.T) {
	_, err := NewClientWithRequester(ClientConfig{SystemID: "1"}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
