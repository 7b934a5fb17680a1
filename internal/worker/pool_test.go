package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		// Later inputs finish first.
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * n, nil
	})

	inputs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	results := pool.Execute(context.Background(), inputs)

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i], r.Input)
		assert.Equal(t, inputs[i]*inputs[i], r.Output)
		assert.NoError(t, r.Err)
	}
}

func TestPool_ErrorsStayWithTheirInput(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	pool := NewPool(0, func(_ context.Context, s string) (int, error) {
		if s == "bad" {
			return 0, boom
		}
		return len(s), nil
	})

	results := pool.Execute(context.Background(), []string{"ok", "bad", "fine"})
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].Output)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, 4, results[2].Output)
}

func TestPool_CancelledContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pool.Execute(ctx, []int{1, 2, 3})
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i+1, r.Input)
		if r.Err != nil {
			assert.ErrorIs(t, r.Err, context.Canceled)
		}
	}
	assert.LessOrEqual(t, calls.Load(), int64(3))
}

func TestBatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}
