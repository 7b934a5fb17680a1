package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"ftl-htmllint/internal/lint"
	"ftl-htmllint/internal/textutil"

	"github.com/rs/zerolog/log"
)

// LintCache memoizes lint results by value hash. Locales repeat many
// identical strings, so each distinct value is linted once per run.
type LintCache struct {
	next   lint.Linter
	mu     sync.RWMutex
	memory map[string][]lint.Issue // hash → issues
	hits   atomic.Int64
	misses atomic.Int64
}

// NewLintCache wraps next with an in-memory cache.
func NewLintCache(next lint.Linter) *LintCache {
	return &LintCache{
		next:   next,
		memory: make(map[string][]lint.Issue),
	}
}

// Get returns a copy of the cached issues for text, and false if text was
// never linted.
func (c *LintCache) Get(text string) ([]lint.Issue, bool) {
	hash := textutil.Hash(text)

	c.mu.RLock()
	defer c.mu.RUnlock()
	issues, ok := c.memory[hash]
	return slices.Clone(issues), ok
}

// Set stores issues for text.
func (c *LintCache) Set(text string, issues []lint.Issue) {
	hash := textutil.Hash(text)

	c.mu.Lock()
	c.memory[hash] = slices.Clone(issues)
	c.mu.Unlock()
}

// Lint implements lint.Linter. Errors are not cached.
func (c *LintCache) Lint(ctx context.Context, text string) ([]lint.Issue, error) {
	if issues, ok := c.Get(text); ok {
		c.hits.Add(1)
		return issues, nil
	}
	c.misses.Add(1)

	issues, err := c.next.Lint(ctx, text)
	if err != nil {
		return nil, err
	}
	c.Set(text, issues)
	return issues, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *LintCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// LogStats writes the hit/miss counters to the debug log.
func (c *LintCache) LogStats() {
	hits, misses := c.Stats()
	log.Debug().Int64("hits", hits).Int64("misses", misses).Msg("Lint cache stats")
}
