package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/gradesearch/data/grades.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/gradesearch/data/indices/bleve"
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = BackendFTS5
	}
	if cfg.Search.CandidatePoolSize == 0 {
		cfg.Search.CandidatePoolSize = 30
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = 10
	}
	if cfg.Search.AutocompletePageSize == 0 {
		cfg.Search.AutocompletePageSize = 5
	}
	if cfg.Search.FastPathPriority == 0 {
		cfg.Search.FastPathPriority = 1e6
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Cache.SearchCapacity == 0 {
		cfg.Cache.SearchCapacity = 50
	}
	if cfg.Cache.AutocompleteCapacity == 0 {
		cfg.Cache.AutocompleteCapacity = 100
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.StatementCapacity == 0 {
		cfg.Cache.StatementCapacity = 100
	}
}
