package search

import (
	"context"
	"testing"

	"github.com/hyperjump/gradesearch/internal/config"
	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/storage/storagetest"
)

// benchEngine builds an engine over the sample catalog. cached=false drops the search
// cache so every iteration runs the full pipeline.
func benchEngine(b *testing.B, cached bool) *Engine {
	b.Helper()
	store := storagetest.NewSampleStore(b)
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	caches, err := NewCaches(cfg.Cache)
	if err != nil {
		b.Fatal(err)
	}
	if !cached {
		caches.Search = nil
	}
	return NewEngine(store, keyword.NewFTS5Index(store), cfg, caches)
}

func BenchmarkEngineSearch(b *testing.B) {
	ctx := context.Background()
	for _, q := range []string{"CS1332", "math", "data structures", "barone"} {
		b.Run(q, func(b *testing.B) {
			engine := benchEngine(b, false)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Search(ctx, q, ""); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEngineSearchCached(b *testing.B) {
	ctx := context.Background()
	engine := benchEngine(b, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, "data structures", ""); err != nil {
			b.Fatal(err)
		}
	}
}
