package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExactlyOnce(t *testing.T) {
	tests := []struct {
		name    string
		tasks   int
		limit   int
		threads int
	}{
		{"unbounded", 200, 0, 4},
		{"queue limit 1", 100, 1, 3},
		{"queue limit 8", 300, 8, 2},
		{"single worker", 50, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.threads, WithQueueLimit(tt.limit))
			runs := make([]atomic.Int32, tt.tasks)
			for i := 0; i < tt.tasks; i++ {
				require.NoError(t, p.SubmitFunc(func() { runs[i].Add(1) }))
				if tt.limit > 0 {
					assert.LessOrEqual(t, p.Pending(), tt.limit)
				}
			}
			p.Stop(true)

			for i := range runs {
				assert.Equal(t, int32(1), runs[i].Load(), "task %d", i)
			}
			assert.Equal(t, Stopped, p.State())
			assert.Equal(t, 0, p.Pending())
		})
	}
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	p := New(4, WithQueueLimit(4))
	var total atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, p.SubmitFunc(func() { total.Add(1) }))
			}
		}()
	}
	wg.Wait()
	p.Stop(true)
	assert.Equal(t, int64(400), total.Load())
}

func TestPool_SubmitBlocksAtLimit(t *testing.T) {
	p := New(1, WithQueueLimit(1))
	gate := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.SubmitFunc(func() { close(started); <-gate }))
	<-started
	require.NoError(t, p.SubmitFunc(func() {}))

	var submitted atomic.Bool
	go func() {
		assert.NoError(t, p.SubmitFunc(func() {}))
		submitted.Store(true)
	}()

	assert.Never(t, submitted.Load, 50*time.Millisecond, 5*time.Millisecond)
	close(gate)
	assert.Eventually(t, submitted.Load, time.Second, 5*time.Millisecond)
	p.Stop(true)
}

func TestPool_RejectAfterStop(t *testing.T) {
	p := New(2)
	p.Stop(false)
	assert.ErrorIs(t, p.SubmitFunc(func() {}), ErrRejected)
	p.Stop(true) // idempotent
	assert.Equal(t, Stopped, p.State())
}

func TestPool_StopReleasesBlockedSubmitter(t *testing.T) {
	p := New(1, WithQueueLimit(1))
	gate := make(chan struct{})
	started := make(chan struct{})
	var queuedRan atomic.Bool

	require.NoError(t, p.SubmitFunc(func() { close(started); <-gate }))
	<-started
	require.NoError(t, p.SubmitFunc(func() { queuedRan.Store(true) }))

	errs := make(chan error, 1)
	go func() { errs <- p.SubmitFunc(func() {}) }()
	assert.Never(t, func() bool { return len(errs) > 0 }, 30*time.Millisecond, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.Stop(false)
		close(stopped)
	}()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrRejected)
	case <-time.After(time.Second):
		t.Fatal("blocked submitter was not released")
	}

	close(gate)
	<-stopped
	assert.False(t, queuedRan.Load(), "queued task dropped without drain")
}

func TestPool_DrainRunsQueued(t *testing.T) {
	p := New(1)
	gate := make(chan struct{})
	var ran atomic.Int32

	require.NoError(t, p.SubmitFunc(func() { <-gate }))
	for i := 0; i < 10; i++ {
		require.NoError(t, p.SubmitFunc(func() { ran.Add(1) }))
	}

	stopped := make(chan struct{})
	go func() {
		p.Stop(true)
		close(stopped)
	}()
	assert.Eventually(t, func() bool { return p.State() == Stopping }, time.Second, time.Millisecond)
	assert.ErrorIs(t, p.SubmitFunc(func() {}), ErrRejected)

	close(gate)
	<-stopped
	assert.Equal(t, int32(10), ran.Load())
}

func TestPool_CPUAffinity(t *testing.T) {
	p := New(2, WithCPUAffinity(true))
	var ran atomic.Int32
	for i := 0; i < 4; i++ {
		require.NoError(t, p.SubmitFunc(func() { ran.Add(1) }))
	}
	p.Stop(true)
	assert.Equal(t, int32(4), ran.Load())
	assert.Equal(t, 2, p.Threads())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "stopped", Stopped.String())
}
