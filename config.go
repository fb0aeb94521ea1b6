package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bodul/wordsearch/search"
)

// Config holds all wordsearch configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Gemini GeminiConfig `yaml:"gemini"`
	Store  StoreConfig  `yaml:"store"`
	Search SearchConfig `yaml:"search"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port       string `yaml:"port"`
	UploadRate int    `yaml:"upload_rate"` // uploads per minute per IP
	SearchRate int    `yaml:"search_rate"` // searches per second per IP
}

// GeminiConfig configures image transcription. Empty ProjectID disables it.
type GeminiConfig struct {
	ProjectID string `yaml:"project_id"`
	Region    string `yaml:"region"`
	Model     string `yaml:"model"`
}

// StoreConfig selects the puzzle store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite
	Path   string `yaml:"path"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Word    string `yaml:"word"`
	Motif   string `yaml:"motif"`
	Workers int    `yaml:"workers"`
	Ragged  string `yaml:"ragged"` // reject, clip
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:       "8080",
			UploadRate: 5,
			SearchRate: 60,
		},
		Gemini: GeminiConfig{
			Region: defaultRegion,
			Model:  defaultModel,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "wordsearch.db",
		},
		Search: SearchConfig{
			Word:    "XMAS",
			Motif:   "MAS",
			Workers: 1,
			Ragged:  "reject",
		},
	}
}

// LoadConfig reads a YAML file over the defaults, then applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GCP_PROJECT_ID"); v != "" {
		c.Gemini.ProjectID = v
	}
	if v := os.Getenv("GCP_REGION"); v != "" {
		c.Gemini.Region = v
	}
	if v := os.Getenv("WORDSEARCH_DB"); v != "" {
		c.Store.Driver = "sqlite"
		c.Store.Path = v
	}
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := search.ParseRaggedPolicy(c.Search.Ragged); err != nil {
		return err
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must be >= 0, got %d", c.Search.Workers)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path required for sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.UploadRate <= 0 || c.Server.SearchRate <= 0 {
		return errors.New("server rate limits must be positive")
	}
	return nil
}

// RaggedPolicy returns the parsed search.ragged value.
func (c Config) RaggedPolicy() search.RaggedPolicy {
	p, _ := search.ParseRaggedPolicy(c.Search.Ragged)
	return p
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
