package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordsearch/search"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "GCP_PROJECT_ID", "GCP_REGION", "WORDSEARCH_DB"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "XMAS", cfg.Search.Word)
	assert.Equal(t, "MAS", cfg.Search.Motif)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, search.RaggedReject, cfg.RaggedPolicy())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wordsearch.yaml")

	cfg := DefaultConfig()
	cfg.Search.Word = "SANTA"
	cfg.Search.Ragged = "clip"
	cfg.Search.Workers = 4
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "SANTA", loaded.Search.Word)
	assert.Equal(t, 4, loaded.Search.Workers)
	assert.Equal(t, search.RaggedClip, loaded.RaggedPolicy())
}

func TestConfigPartialYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wordsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  motif: SOS\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "SOS", cfg.Search.Motif)
	assert.Equal(t, "XMAS", cfg.Search.Word)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GCP_PROJECT_ID", "my-project")
	t.Setenv("WORDSEARCH_DB", "/tmp/ws.db")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "my-project", cfg.Gemini.ProjectID)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/ws.db", cfg.Store.Path)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"ragged":  func(c *Config) { c.Search.Ragged = "pad" },
		"workers": func(c *Config) { c.Search.Workers = -1 },
		"driver":  func(c *Config) { c.Store.Driver = "postgres" },
		"path":    func(c *Config) { c.Store.Driver = "sqlite"; c.Store.Path = "" },
		"rate":    func(c *Config) { c.Server.SearchRate = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
