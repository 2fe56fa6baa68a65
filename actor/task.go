package actor

import (
	"fmt"
	"time"

	"github.com/lguibr/greenroom/message"
	"github.com/lguibr/greenroom/scheduler"
)

// batchTask is the scheduler.Task spec.md section 4.4 describes as "process
// up to batch-size messages for actor A then re-park or reschedule". One is
// constructed fresh by wake() every time an idle actor gets new work.
type batchTask struct {
	a *Actor
}

func newBatchTask(a *Actor) scheduler.Task {
	return &batchTask{a: a}
}

func (t *batchTask) Name() string { return string(t.a.path) }

func (t *batchTask) Priority() scheduler.Priority {
	return scheduler.PriorityNormal
}

// SetWorkerID implements scheduler.WorkerAware: the worker that is about to
// run this batch records itself as the actor's last-run-on worker, so a
// later park() can reschedule back onto the same deque for cache locality.
func (t *batchTask) SetWorkerID(id int) { t.a.workerID = id }

// Execute runs the actor's batch-processing contract: ensure the actor has
// started, drain up to batchSize messages through behavior.Receive,
// applying supervision on failure, then double-check the mailbox before
// releasing the scheduled flag (spec.md section 4.3's wake-up protocol).
func (t *batchTask) Execute() {
	a := t.a

	if err := a.ensureStarted(); err != nil {
		a.logf("actor %s: start failed: %v\n", a.path, err)
		a.fail(err)
		a.park()
		return
	}

	processed := 0
	for processed < a.batchSize {
		msg, err := a.mailbox.Receive()
		if err != nil {
			break
		}
		processed++
		t.deliver(msg)
		if a.State() == StateStopped || a.State() == StateTerminated {
			break
		}
	}

	a.park()
}

// deliver invokes the current behavior on one message, handling the
// framework's own system messages (start/stop/restart/watch machinery)
// before falling through to the user behavior for everything else.
func (t *batchTask) deliver(msg *message.Message) {
	a := t.a
	defer msg.Release()

	if msg.Tag == message.TagSystem {
		t.handleSystem(msg)
		return
	}

	ctx := &actorContext{a: a}
	if msg.Meta.HasSender {
		ctx.sender = Ref{id: ID(msg.Meta.SenderID), host: a.self.host}
		ctx.hasSnd = true
	}

	if err := a.behavior.Receive(ctx, msg); err != nil {
		a.statsMu.Lock()
		a.stats.Failures++
		a.statsMu.Unlock()
		a.supervise(err)
		return
	}

	a.statsMu.Lock()
	a.stats.Processed++
	a.statsMu.Unlock()
}

func (t *batchTask) handleSystem(msg *message.Message) {
	a := t.a
	switch msg.SystemKind {
	case message.SysStop:
		a.beginStop()
	case message.SysKill:
		a.beginStop()
	case message.SysRestart:
		a.restart(fmt.Errorf("actor: restart requested"))
	case message.SysTerminated:
		ctx := &actorContext{a: a}
		if w, ok := a.behavior.(TerminationWatcher); ok {
			w.OnTerminated(ctx, ID(msg.Meta.SenderID))
		}
	}
}

// ensureStarted transitions Created -> Starting -> Running exactly once,
// invoking PreStart if the behavior implements it.
func (a *Actor) ensureStarted() error {
	if a.State() != StateCreated {
		return nil
	}
	if err := a.transition(StateStarting); err != nil {
		return err
	}
	if hook, ok := a.behavior.(PreStarter); ok {
		if err := hook.PreStart(&actorContext{a: a}); err != nil {
			_ = a.transition(StateFailed)
			return err
		}
	}
	return a.transition(StateRunning)
}

// beginStop transitions the actor to Stopping, invokes PostStop, then
// Stopped, and notifies watchers through the system handle. Idempotent.
func (a *Actor) beginStop() {
	if a.State() == StateStopped || a.State() == StateTerminated {
		return
	}
	_ = a.transition(StateStopping)
	if hook, ok := a.behavior.(PostStopper); ok {
		_ = hook.PostStop(&actorContext{a: a})
	}
	_ = a.transition(StateStopped)
	a.mailbox.Clear()
	a.stash.Clear()
	a.sys.NotifyTerminated(a.self)
}

// fail transitions the actor to Failed and applies its supervisor strategy
// as though the actor's own startup had thrown, per spec.md section 4.4.
func (a *Actor) fail(reason error) {
	_ = a.transition(StateFailed)
	a.supervise(reason)
}

// supervise applies the behavior's SupervisorStrategy (default: restart) to
// a Receive/start failure.
func (a *Actor) supervise(reason error) {
	a.statsMu.Lock()
	a.stats.Failures++
	a.statsMu.Unlock()

	switch strategyOf(a.behavior) {
	case StrategyResume:
		a.logf("actor %s: resuming after error: %v\n", a.path, reason)
	case StrategyStop:
		a.beginStop()
	case StrategyEscalate:
		a.sys.Escalate(a.self, reason)
	default: // StrategyRestart
		a.restart(reason)
	}
}

// restart enforces the restart budget (spec.md section 4.4), then rebuilds
// the behavior from its Producer, discarding stash and in-flight mailbox
// contents (the Open Question resolved in DESIGN.md: restart clears both).
func (a *Actor) restart(reason error) {
	if !a.restartAllowed(time.Now()) {
		a.logf("actor %s: restart budget exhausted, stopping\n", a.path)
		a.beginStop()
		return
	}

	if err := a.transition(StateRestarting); err != nil {
		a.beginStop()
		return
	}

	if hook, ok := a.behavior.(PreRestarter); ok {
		_ = hook.PreRestart(&actorContext{a: a}, reason)
	}

	a.mailbox.Clear()
	a.stash.Clear()
	a.behavior = a.factory()

	a.statsMu.Lock()
	a.stats.Restarts++
	a.statsMu.Unlock()

	if err := a.transition(StateStarting); err != nil {
		a.beginStop()
		return
	}
	if hook, ok := a.behavior.(PreStarter); ok {
		if err := hook.PreStart(&actorContext{a: a}); err != nil {
			_ = a.transition(StateFailed)
			a.beginStop()
			return
		}
	}
	_ = a.transition(StateRunning)
	if hook, ok := a.behavior.(PostRestarter); ok {
		_ = hook.PostRestart(&actorContext{a: a})
	}
}

// park implements the double-check half of the wake-up protocol: clear
// scheduled, then re-check for messages that arrived during the batch; if
// any did, reclaim scheduled and resubmit instead of leaving them stranded
// until an unrelated future send wakes the actor again.
func (a *Actor) park() {
	if a.State() == StateStopped || a.State() == StateTerminated {
		a.scheduled.StoreRelease(0)
		return
	}
	a.scheduled.StoreRelease(0)
	if a.mailbox.Len() > 0 && a.scheduled.CompareAndSwapAcqRel(0, 1) {
		_ = a.sched.Reschedule(a.workerID, newBatchTask(a))
	}
}

// TerminationWatcher is an optional Behavior capability: implement it to be
// notified when a watched actor terminates, per spec.md section 4.4's
// watch/unwatch supplement.
type TerminationWatcher interface {
	OnTerminated(ctx Context, who ID)
}
