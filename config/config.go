// Package config loads runtime configuration for the echokernel CLI and
// examples. Values are layered: built-in defaults, then an optional YAML
// file, then ECHO_-prefixed environment variables (ECHO_TEXT_PROVIDER maps
// to text.provider).
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Text   TextConfig   `koanf:"text"`
	Memory MemoryConfig `koanf:"memory"`
	Search SearchConfig `koanf:"search"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

// TextConfig selects and configures the text provider.
type TextConfig struct {
	Provider string `koanf:"provider"` // openai, anthropic
	Model    string `koanf:"model"`
	APIKey   string `koanf:"api_key"`
}

// MemoryConfig configures semantic memory.
type MemoryConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Storage       string `koanf:"storage"` // chromem, qdrant
	QdrantAddr    string `koanf:"qdrant_addr"`
	PersistPath   string `koanf:"persist_path"`
	EmbedderModel string `koanf:"embedder_model"`
}

// SearchConfig selects and configures the web search provider.
type SearchConfig struct {
	Provider string `koanf:"provider"` // duckduckgo, bing, google
	APIKey   string `koanf:"api_key"`
	EngineID string `koanf:"engine_id"` // google custom search engine id
}

// Load reads configuration from the optional YAML file at path and from
// ECHO_-prefixed environment variables layered on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	defaults := map[string]any{
		"log.level":     "info",
		"log.format":    "text",
		"text.provider": "openai",

		"memory.enabled":        false,
		"memory.storage":        "chromem",
		"memory.qdrant_addr":    "localhost:6334",
		"memory.embedder_model": "text-embedding-3-small",

		"search.provider": "duckduckgo",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (ECHO_TEXT_PROVIDER -> text.provider)
	if err := k.Load(env.Provider("ECHO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ECHO_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
