// Package scheduler implements the work-stealing executor of spec.md
// section 4.3: a fixed pool of worker goroutines, each with a local
// Chase-Lev deque, backed by a priority-sharded global overflow queue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lguibr/greenroom/config"
)

// State is the scheduler's own lifecycle, per spec.md section 4.3:
// stopped -> starting -> running -> stopping -> stopped.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned by Start when the scheduler is not stopped.
var ErrAlreadyRunning = errors.New("scheduler: already running")

// ErrNotRunning is returned by Submit when the scheduler isn't accepting
// work.
var ErrNotRunning = errors.New("scheduler: not running")

// Scheduler is the work-stealing executor. One Scheduler owns its own
// worker pool and global queue; two Schedulers (like two Systems) never
// share state, per spec.md section 9's "no process-wide singletons" note.
type Scheduler struct {
	cfg     config.Config
	state   atomic.Int32
	workers []*worker
	global  *globalQueue
	group   *errgroup.Group
	rrNext  atomic.Uint64 // not read: Submit always targets the global queue
}

// New constructs a Scheduler from cfg without starting it.
func New(cfg config.Config) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		global: newGlobalQueue(cfg.GlobalQueueCapacity),
	}
}

func (s *Scheduler) isRunning() bool {
	return State(s.state.Load()) == StateRunning
}

// State reports the scheduler's current lifecycle state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Start launches the worker pool. Returns ErrAlreadyRunning if called while
// the scheduler is not stopped.
func (s *Scheduler) Start() error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrAlreadyRunning
	}

	n := s.cfg.ResolvedWorkerThreads(runtime.NumCPU())
	s.workers = make([]*worker, n)
	for i := range s.workers {
		s.workers[i] = newWorker(i, s)
	}

	s.state.Store(int32(StateRunning))

	g, _ := errgroup.WithContext(context.Background())
	s.group = g
	for _, w := range s.workers {
		w := w
		g.Go(func() error {
			w.run()
			return nil
		})
	}
	return nil
}

// Submit enqueues a task for execution. Called from non-worker threads
// (actor Send's wake-up path); it always goes to the global queue, split
// by the task's own priority per spec.md section 4.3.
func (s *Scheduler) Submit(t Task) error {
	if !s.isRunning() {
		return ErrNotRunning
	}
	return s.global.push(t)
}

// Reschedule resubmits a task from inside a worker: to the owner's local
// deque bottom when possible (cache locality), falling back to the global
// queue when the deque is full. workerID identifies the owning worker.
func (s *Scheduler) Reschedule(workerID int, t Task) error {
	if workerID >= 0 && workerID < len(s.workers) {
		if s.workers[workerID].local.PushBottom(t) {
			return nil
		}
	}
	return s.Submit(t)
}

// Stop transitions the scheduler to stopping, waits for every worker to
// finish its current task and exit, and drops (deiniting) whatever
// remains queued. Returns once all workers have joined or
// shutdown-timeout-ms elapses, whichever comes first, per spec.md section
// 4.3.
func (s *Scheduler) Stop(deinit func(Task)) error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		if State(s.state.Load()) == StateStopped {
			return nil
		}
	}

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownTimeout):
		if s.cfg.Verbose {
			fmt.Println("scheduler: shutdown timeout, abandoning worker join")
		}
	}

	if deinit != nil {
		for _, w := range s.workers {
			for {
				t, ok := w.local.PopBottom()
				if !ok {
					break
				}
				deinit(t)
			}
		}
		s.global.drain(deinit)
	}

	s.state.Store(int32(StateStopped))
	return nil
}

// WorkerStats returns per-worker (stealAttempts, processed) counters, in
// worker-id order, for diagnostics and the load-balance sanity test of
// spec.md section 8 scenario 6.
func (s *Scheduler) WorkerStats() [][2]uint64 {
	out := make([][2]uint64, len(s.workers))
	for i, w := range s.workers {
		a, p := w.Stats()
		out[i] = [2]uint64{a, p}
	}
	return out
}

// NumWorkers returns the resolved worker count.
func (s *Scheduler) NumWorkers() int { return len(s.workers) }
