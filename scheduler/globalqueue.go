package scheduler

import (
	"errors"

	"code.hybscloud.com/lfq"
)

// ErrQueueFull is returned when the global queue's priority level is at
// capacity (spec.md section 7's SchedulerQueueFull).
var ErrQueueFull = errors.New("scheduler: global queue full")

// globalQueue is the bounded overflow queue of spec.md section 4.3: one
// lfq.MPMC ring per priority level, popped in strict priority order so
// critical system messages (stop, kill) never queue behind a backlog of
// low-priority user traffic. Built on lfq.MPMC because both local-deque
// overflow and submissions from non-worker threads are genuinely
// multi-producer multi-consumer.
type globalQueue struct {
	levels [4]*lfq.MPMC[Task]
}

func newGlobalQueue(capacityPerLevel int) *globalQueue {
	gq := &globalQueue{}
	for i := range gq.levels {
		gq.levels[i] = lfq.NewMPMC[Task](capacityPerLevel)
	}
	return gq
}

func (gq *globalQueue) push(t Task) error {
	lvl := gq.levels[t.Priority()]
	if err := lvl.Enqueue(&t); err != nil {
		return ErrQueueFull
	}
	return nil
}

// pop returns the highest-priority queued task, scanning critical, high,
// normal, low in that order.
func (gq *globalQueue) pop() (Task, bool) {
	for i := len(gq.levels) - 1; i >= 0; i-- {
		if t, err := gq.levels[i].Dequeue(); err == nil {
			return t, true
		}
	}
	return nil, false
}

// drain pops every remaining task across all levels, invoking deinit(t) on
// each — used at scheduler shutdown per spec.md section 4.3 ("tasks in
// queues at shutdown are dropped; their deinit is invoked").
func (gq *globalQueue) drain(deinit func(Task)) {
	for {
		t, ok := gq.pop()
		if !ok {
			return
		}
		deinit(t)
	}
}
