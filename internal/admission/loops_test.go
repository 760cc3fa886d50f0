package admission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/mentor/internal/types"
)

// fakeDispatcher records requests and returns scripted responses
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []*types.AnalysisRequest
	err   error
}

func (f *fakeDispatcher) Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &types.AnalysisResult{Summary: "feedback for " + req.Change.Content}, nil
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDrainDispatchesOneRequestPerTick(t *testing.T) {
	fd := &fakeDispatcher{}
	ctrl, err := NewController(DefaultConfig(), nil, WithDispatcher(fd))
	require.NoError(t, err)

	ctrl.EnqueueAnalysis(change("first"), types.PriorityMedium, "s1")
	ctrl.EnqueueAnalysis(change("second"), types.PriorityHigh, "s1")

	ctrl.drainOnce(context.Background())
	require.Equal(t, 1, fd.callCount(), "one tick drains one request")
	assert.Equal(t, "second", fd.calls[0].Change.Content, "higher priority drains first")

	ctrl.drainOnce(context.Background())
	assert.Equal(t, 2, fd.callCount())
	assert.Equal(t, 0, ctrl.Status().QueueSize)
}

func TestDrainCachesSuccessfulResult(t *testing.T) {
	fd := &fakeDispatcher{}
	ctrl, err := NewController(DefaultConfig(), nil, WithDispatcher(fd))
	require.NoError(t, err)

	c := change("needs feedback")
	ctrl.EnqueueAnalysis(c, types.PriorityMedium, "s1")
	ctrl.drainOnce(context.Background())

	result, ok := ctrl.GetCachedAnalysis(c, "s1")
	require.True(t, ok, "drained result must be cached for the session")
	assert.Equal(t, "feedback for needs feedback", result.Summary)
}

func TestDrainDropsOnDispatcherFailure(t *testing.T) {
	fd := &fakeDispatcher{err: errors.New("provider unavailable")}
	ctrl, err := NewController(DefaultConfig(), nil, WithDispatcher(fd))
	require.NoError(t, err)

	c := change("doomed")
	ctrl.EnqueueAnalysis(c, types.PriorityMedium, "s1")
	ctrl.drainOnce(context.Background())

	assert.Equal(t, 0, ctrl.Status().QueueSize, "failed request is dropped, not requeued")
	_, ok := ctrl.GetCachedAnalysis(c, "s1")
	assert.False(t, ok, "failed dispatch must not populate the cache")

	// The next drain still works
	ctrl.EnqueueAnalysis(change("survivor"), types.PriorityMedium, "s1")
	fd.err = nil
	ctrl.drainOnce(context.Background())
	assert.Equal(t, 2, fd.callCount())
}

func TestDrainWithoutDispatcherDropsQuietly(t *testing.T) {
	ctrl, err := NewController(DefaultConfig(), nil)
	require.NoError(t, err)

	ctrl.EnqueueAnalysis(change("nowhere to go"), types.PriorityMedium, "s1")
	ctrl.drainOnce(context.Background())
	assert.Equal(t, 0, ctrl.Status().QueueSize)
}

func TestDrainOnEmptyQueueIsNoOp(t *testing.T) {
	fd := &fakeDispatcher{}
	ctrl, err := NewController(DefaultConfig(), nil, WithDispatcher(fd))
	require.NoError(t, err)

	ctrl.drainOnce(context.Background())
	assert.Equal(t, 0, fd.callCount())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DrainInterval = 10 * time.Millisecond
	cfg.SweepInterval = 10 * time.Millisecond

	fd := &fakeDispatcher{}
	ctrl, err := NewController(cfg, nil, WithDispatcher(fd))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	ctrl.EnqueueAnalysis(change("queued while running"), types.PriorityHigh, "s1")

	// Give the drain a few ticks, then stop
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	assert.GreaterOrEqual(t, fd.callCount(), 1, "the running drain should have dispatched the queued request")
}
