package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/pkg/logger"
)

type fakeRelay struct {
	mu      sync.Mutex
	batches []int
	calls   int
	dlq     int
	err     error
}

func (f *fakeRelay) ProcessBatch(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dlq++
	return 1, nil
}

type fakeCleaner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeCleaner) CleanupExpired(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 0, nil
}

func TestDrainOutbox_StopsOnEmptyBatch(t *testing.T) {
	relay := &fakeRelay{batches: []int{100, 100, 7}}
	w := NewWorker(relay, &fakeCleaner{}, Intervals{}, logger.NewNop())

	w.drainOutbox(context.Background())

	assert.Equal(t, 4, relay.calls)
	assert.Empty(t, relay.batches)
}

func TestDrainOutbox_StopsOnError(t *testing.T) {
	relay := &fakeRelay{err: errors.New("db down")}
	w := NewWorker(relay, &fakeCleaner{}, Intervals{}, logger.NewNop())

	w.drainOutbox(context.Background())

	assert.Equal(t, 1, relay.calls)
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	relay := &fakeRelay{}
	cleaner := &fakeCleaner{}
	w := NewWorker(relay, cleaner, Intervals{
		Poll:    time.Millisecond,
		DLQ:     time.Millisecond,
		Cleanup: time.Millisecond,
	}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		cleaner.mu.Lock()
		defer cleaner.mu.Unlock()
		return relay.calls > 0 && relay.dlq > 0 && cleaner.calls > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
