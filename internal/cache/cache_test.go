package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftl-htmllint/internal/lint"
)

type countingLinter struct {
	calls atomic.Int64
	err   error
}

func (l *countingLinter) Lint(_ context.Context, text string) ([]lint.Issue, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	if text == "bad" {
		return []lint.Issue{{Code: "E001", Rule: lint.RuleTagBans}}, nil
	}
	return nil, nil
}

func TestLintCache_LintsEachValueOnce(t *testing.T) {
	t.Parallel()

	inner := &countingLinter{}
	c := NewLintCache(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		issues, err := c.Lint(ctx, "bad")
		require.NoError(t, err)
		assert.Len(t, issues, 1)
	}
	_, err := c.Lint(ctx, "good")
	require.NoError(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
}

func TestLintCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	inner := &countingLinter{err: errors.New("boom")}
	c := NewLintCache(inner)

	_, err := c.Lint(context.Background(), "x")
	assert.Error(t, err)
	_, ok := c.Get("x")
	assert.False(t, ok)
}

func TestLintCache_ConcurrentUse(t *testing.T) {
	t.Parallel()

	inner := &countingLinter{}
	c := NewLintCache(inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := "good"
			if i%2 == 0 {
				text = "bad"
			}
			_, err := c.Lint(context.Background(), text)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, int64(16), hits+misses)
	_, ok := c.Get("bad")
	assert.True(t, ok)
}

func TestLintCache_ReturnsCopies(t *testing.T) {
	t.Parallel()

	c := NewLintCache(&countingLinter{})
	ctx := context.Background()

	first, err := c.Lint(ctx, "bad")
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].Code = "changed"
	_ = append(first[:0], lint.Issue{Code: "appended"})

	second, err := c.Lint(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, []lint.Issue{{Code: "E001", Rule: lint.RuleTagBans}}, second)

	second[0].Rule = "changed"
	third, ok := c.Get("bad")
	require.True(t, ok)
	assert.Equal(t, lint.RuleTagBans, third[0].Rule)
}
