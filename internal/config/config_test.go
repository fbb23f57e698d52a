package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
db:        "/tmp/log.db"
verify:    true
log_level: "debug"
`), "actdb.cue")
	require.NoError(t, err)
	assert.Equal(t, Config{DB: "/tmp/log.db", Verify: true, LogLevel: "debug"}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`verify: true`), "actdb.cue")
	require.NoError(t, err)
	assert.Equal(t, "actdb.db", cfg.DB)
	assert.True(t, cfg.Verify)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"wrong type", `verify: "yes"`},
		{"unknown level", `log_level: "trace"`},
		{"syntax error", `db: "unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actdb.cue")
	require.NoError(t, os.WriteFile(path, []byte(`db: "x.db"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.DB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Default().Level())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.Level())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.Level())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "bogus"}.Level())
}
