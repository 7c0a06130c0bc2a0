// Package config provides configuration loading and structs for the gradesearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/gradesearch/internal/ranking"
)

// Index backends.
const (
	BackendFTS5  = "fts5"
	BackendBleve = "bleve"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool           `yaml:"debug"`
	Server  ServerConfig   `yaml:"server"`
	Storage StorageConfig  `yaml:"storage"`
	Index   IndexConfig    `yaml:"index"`
	Search  SearchConfig   `yaml:"search"`
	Ranking ranking.Config `yaml:"ranking"`
	Cache   CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the optional bleve index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// IndexConfig selects the full-text backend.
type IndexConfig struct {
	Backend string `yaml:"backend"`
}

// SearchConfig bounds candidate pools and page sizes.
type SearchConfig struct {
	CandidatePoolSize    int     `yaml:"candidate_pool_size"`
	PageSize             int     `yaml:"page_size"`
	AutocompletePageSize int     `yaml:"autocomplete_page_size"`
	FastPathPriority     float64 `yaml:"fast_path_priority"`
}

// CacheConfig sizes the result caches and the prepared statement memo.
type CacheConfig struct {
	SearchCapacity       int           `yaml:"search_capacity"`
	AutocompleteCapacity int           `yaml:"autocomplete_capacity"`
	TTL                  time.Duration `yaml:"ttl"`
	StatementCapacity    int           `yaml:"statement_capacity"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)

	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case BackendFTS5, BackendBleve:
	default:
		return fmt.Errorf("unknown index backend %q", c.Index.Backend)
	}
	if c.Search.PageSize > c.Search.CandidatePoolSize {
		return fmt.Errorf("page_size %d exceeds candidate_pool_size %d", c.Search.PageSize, c.Search.CandidatePoolSize)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" is left alone.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
