package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "openai", cfg.Text.Provider)
	assert.False(t, cfg.Memory.Enabled)
	assert.Equal(t, "chromem", cfg.Memory.Storage)
	assert.Equal(t, "localhost:6334", cfg.Memory.QdrantAddr)
	assert.Equal(t, "text-embedding-3-small", cfg.Memory.EmbedderModel)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: debug
text:
  provider: anthropic
  model: claude-3-5-sonnet-20241022
memory:
  enabled: true
  storage: qdrant
`)

	cfg, err := Load(path)
	assert.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "anthropic", cfg.Text.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Text.Model)
	assert.True(t, cfg.Memory.Enabled)
	assert.Equal(t, "qdrant", cfg.Memory.Storage)

	// Values the file does not set keep their defaults.
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
text:
  provider: anthropic
`)

	t.Setenv("ECHO_TEXT_PROVIDER", "openai")
	t.Setenv("ECHO_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	assert.NoError(t, err)

	assert.Equal(t, "openai", cfg.Text.Provider)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvBoolean(t *testing.T) {
	t.Setenv("ECHO_MEMORY_ENABLED", "true")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.True(t, cfg.Memory.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
