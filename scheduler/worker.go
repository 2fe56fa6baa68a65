package scheduler

import (
	"math/rand"
	"sync/atomic"

	"code.hybscloud.com/iox"

	"github.com/lguibr/greenroom/deque"
)

// worker owns one local deque and runs on exactly one goroutine for its
// lifetime, per spec.md section 3 ("binds to one OS thread for its
// lifetime" — Go cannot pin a goroutine to an OS thread without
// runtime.LockOSThread, which would starve the rest of the runtime's
// goroutines; one long-lived goroutine per worker is the idiomatic Go
// stand-in and is what every actor framework in the retrieved pack does).
type worker struct {
	id            int
	sched         *Scheduler
	local         *deque.Deque
	stealAttempts uint64
	processed     uint64
	backoff       iox.Backoff
}

func newWorker(id int, sched *Scheduler) *worker {
	return &worker{
		id:    id,
		sched: sched,
		local: deque.New(sched.cfg.WorkerQueueCapacity),
	}
}

// run is the per-worker main loop described in spec.md section 4.3.
func (w *worker) run() {
	for w.sched.isRunning() {
		task, ok := w.local.PopBottom()
		if !ok {
			task, ok = w.sched.global.pop()
		}
		if !ok && w.sched.cfg.EnableWorkStealing {
			task, ok = w.trySteal()
		}
		if !ok {
			w.backoff.Wait()
			continue
		}
		w.backoff.Reset()
		if wa, ok := task.(WorkerAware); ok {
			wa.SetWorkerID(w.id)
		}
		task.Execute()
		atomic.AddUint64(&w.processed, 1)
	}
}

// trySteal attempts up to MaxStealAttempts steals from uniformly random
// victims, per spec.md section 4.3.
func (w *worker) trySteal() (Task, bool) {
	n := len(w.sched.workers)
	if n < 2 {
		return nil, false
	}
	for i := 0; i < w.sched.cfg.MaxStealAttempts; i++ {
		atomic.AddUint64(&w.stealAttempts, 1)
		victim := w.sched.workers[rand.Intn(n)]
		if victim == w {
			continue
		}
		if t, ok := victim.local.Steal(); ok {
			return t.(Task), true
		}
	}
	return nil, false
}

// Stats reports the worker's cumulative steal attempts and processed task
// count for diagnostics and the load-balance sanity check of spec.md
// section 8 scenario 6.
func (w *worker) Stats() (stealAttempts, processed uint64) {
	return atomic.LoadUint64(&w.stealAttempts), atomic.LoadUint64(&w.processed)
}
