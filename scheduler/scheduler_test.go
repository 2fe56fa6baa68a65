package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/greenroom/config"
)

func TestSchedulerRunsSubmittedTasks(t *testing.T) {
	cfg := config.ForTests()
	s := New(cfg)
	require.NoError(t, s.Start())
	defer s.Stop(nil)

	const n = 500
	var done int64
	wait := make(chan struct{})
	for i := 0; i < n; i++ {
		require.NoError(t, s.Submit(NewFuncTask("t", PriorityNormal, func() {
			if atomic.AddInt64(&done, 1) == n {
				close(wait)
			}
		})))
	}

	select {
	case <-wait:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tasks to run")
	}
	assert.Equal(t, int64(n), atomic.LoadInt64(&done))
}

func TestSchedulerPrioritizesCritical(t *testing.T) {
	cfg := config.ForTests()
	cfg.WorkerThreads = 1
	s := New(cfg)

	// Queue both tasks before the single worker starts, so the worker's
	// first global pop sees both and must pick the critical one.
	var order []string
	done := make(chan struct{}, 2)
	require.NoError(t, s.global.push(NewFuncTask("low", PriorityLow, func() {
		order = append(order, "low")
		done <- struct{}{}
	})))
	require.NoError(t, s.global.push(NewFuncTask("critical", PriorityCritical, func() {
		order = append(order, "critical")
		done <- struct{}{}
	})))
	require.NoError(t, s.Start())
	defer s.Stop(nil)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out")
		}
	}
	require.NotEmpty(t, order)
	assert.Equal(t, []string{"critical", "low"}, order)
}

func TestSubmitAfterStopFails(t *testing.T) {
	cfg := config.ForTests()
	s := New(cfg)
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop(nil))
	err := s.Submit(NewFuncTask("x", PriorityNormal, func() {}))
	assert.ErrorIs(t, err, ErrNotRunning)
}
