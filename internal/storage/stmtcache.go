package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// stmtCache memoizes prepared statements by SQL text. Evicted statements are closed;
// database/sql defers the real close until in-flight rows are released.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	cache *lru.Cache[string, *sql.Stmt]
}

func newStmtCache(db *sql.DB, capacity int) (*stmtCache, error) {
	cache, err := lru.NewWithEvict[string, *sql.Stmt](capacity, func(_ string, stmt *sql.Stmt) {
		_ = stmt.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create statement cache: %w", err)
	}
	return &stmtCache{db: db, cache: cache}, nil
}

func (c *stmtCache) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := c.cache.Get(query); ok {
		return stmt, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stmt, ok := c.cache.Get(query); ok {
		return stmt, nil
	}
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Add(query, stmt)
	return stmt, nil
}

// query runs a cached statement. A statement closed by a concurrent eviction is
// retried once without the cache.
func (c *stmtCache) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := c.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil && strings.Contains(err.Error(), "statement is closed") {
		return c.db.QueryContext(ctx, query, args...)
	}
	return rows, err
}

func (c *stmtCache) len() int {
	return c.cache.Len()
}

func (c *stmtCache) close() {
	c.cache.Purge()
}
