package actor

import (
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"

	"github.com/lguibr/greenroom/mailbox"
	"github.com/lguibr/greenroom/message"
	"github.com/lguibr/greenroom/scheduler"
)

// Stats are the per-actor counters spec.md section 3 calls "statistics".
type Stats struct {
	Processed uint64
	Failures  uint64
	Restarts  uint64
}

// Actor is the runtime instance described in spec.md section 3: id,
// exclusive mailbox, behavior, state, stats, restart bookkeeping, parent,
// children, watchers, and an optional stash.
type Actor struct {
	id     ID
	path   Path
	self   Ref
	parent Ref

	sys   SystemHandle
	sched *scheduler.Scheduler

	mailbox mailbox.Mailbox
	factory Producer
	behavior Behavior

	state atomix.Uint64 // holds State, CAS-guarded
	scheduled atomix.Uint64 // 0/1 wake-up flag, spec.md section 4.3

	mu       sync.RWMutex
	children map[ID]Ref
	watchers map[ID]Ref

	stash Stash

	statsMu sync.Mutex
	stats   Stats

	restartCount      int
	restartWindowFrom time.Time
	maxRestarts       int
	restartWindow     time.Duration
	batchSize         int
	verbose           bool

	workerID int // set by the scheduler task that last ran this actor
}

// Params bundles the construction inputs system needs to supply; kept as a
// struct because the list is long and mostly passed straight through from
// config.Config.
type Params struct {
	ID            ID
	Path          Path
	Parent        Ref
	Sys           SystemHandle
	Sched         *scheduler.Scheduler
	Factory       Producer
	MailboxKind   mailbox.Variant
	MailboxCap    int
	BatchSize     int
	MaxRestarts   int
	RestartWindow time.Duration
	Verbose       bool
}

// New constructs an Actor in StateCreated. The caller (system) is
// responsible for registering the Actor's Ref and delivering the initial
// start system message.
func New(p Params, host Host) *Actor {
	batchSize := p.BatchSize
	if batchSize > 128 { // config.Config.BatchSize is capped at 128
		batchSize = 128
	}
	a := &Actor{
		id:            p.ID,
		path:          p.Path,
		parent:        p.Parent,
		sys:           p.Sys,
		sched:         p.Sched,
		mailbox:       mailbox.New(p.MailboxKind, p.MailboxCap),
		factory:       p.Factory,
		children:      make(map[ID]Ref),
		watchers:      make(map[ID]Ref),
		maxRestarts:   p.MaxRestarts,
		restartWindow: p.RestartWindow,
		batchSize:     batchSize,
		verbose:       p.Verbose,
		workerID:      -1,
	}
	a.self = NewRef(p.ID, p.Path, host)
	a.state.StoreRelease(uint64(StateCreated))
	a.behavior = p.Factory()
	return a
}

// Ref returns the actor's own Ref.
func (a *Actor) Ref() Ref { return a.self }

// Parent returns the actor's parent Ref (the zero Ref for a guardian).
func (a *Actor) Parent() Ref { return a.parent }

// ChildRefs returns a snapshot of the actor's current children.
func (a *Actor) ChildRefs() []Ref {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Ref, 0, len(a.children))
	for _, ref := range a.children {
		out = append(out, ref)
	}
	return out
}

// State returns the actor's current lifecycle state.
func (a *Actor) State() State { return State(a.state.LoadAcquire()) }

// Stats returns a snapshot of the actor's counters.
func (a *Actor) Stats() Stats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}

// transition attempts from -> to; returns an error if the table of
// spec.md section 3 forbids it.
func (a *Actor) transition(to State) error {
	for {
		from := State(a.state.LoadAcquire())
		if !CanTransition(from, to) {
			return &ErrInvalidTransition{From: from, To: to}
		}
		if a.state.CompareAndSwapAcqRel(uint64(from), uint64(to)) {
			return nil
		}
	}
}

// mailboxSendRaw enqueues directly into this actor's own mailbox, used by
// UnstashAll (spec.md section 4.4).
func (a *Actor) mailboxSendRaw(msg *message.Message) error {
	if err := a.mailbox.Send(msg); err != nil {
		return err
	}
	a.wake()
	return nil
}

// EnqueueUser is called by system, already resolved to this actor, on
// behalf of a sender's Ref.Send. It rejects terminal-state actors, stamps
// the sender, enqueues, and wakes the actor if it was parked, per spec.md
// section 4.4's send semantics.
func (a *Actor) EnqueueUser(sender *Ref, payload message.Payload) error {
	st := a.State()
	if !st.AcceptsUserMessages() {
		return ErrTerminated
	}
	msg := message.New(payload)
	if sender != nil {
		msg.Meta.HasSender = true
		msg.Meta.SenderID = int64(sender.ID())
	}
	if err := a.mailbox.Send(msg); err != nil {
		a.statsMu.Lock()
		a.stats.Failures++
		a.statsMu.Unlock()
		return err
	}
	a.wake()
	return nil
}

// EnqueueSystem enqueues a system message, optionally stamped with sender
// (used for Terminated notifications so the watcher's Receive knows who).
// System messages bypass the terminal-state check where the state machine
// allows it (stop and terminated-notification must still reach a
// stopping/stopped actor).
func (a *Actor) EnqueueSystem(sender *Ref, kind message.SystemKind) error {
	msg := message.NewSystem(kind)
	if sender != nil {
		msg.Meta.HasSender = true
		msg.Meta.SenderID = int64(sender.ID())
	}
	if err := a.mailbox.Send(msg); err != nil {
		return err
	}
	a.wake()
	return nil
}

// wake implements the wake-up protocol of spec.md section 4.3: a send that
// finds scheduled==false CAS-sets it true and submits a processing task.
func (a *Actor) wake() {
	if a.scheduled.CompareAndSwapAcqRel(0, 1) {
		_ = a.sched.Submit(newBatchTask(a))
	}
}

// Supervision hooks -----------------------------------------------------

// restartAllowed enforces the budget of spec.md section 4.4: reject if
// restart-count >= max-restarts within restart-window.
func (a *Actor) restartAllowed(now time.Time) bool {
	if a.restartWindowFrom.IsZero() || now.Sub(a.restartWindowFrom) > a.restartWindow {
		a.restartWindowFrom = now
		a.restartCount = 0
	}
	if a.restartCount >= a.maxRestarts {
		return false
	}
	a.restartCount++
	return true
}

func (a *Actor) logf(format string, args ...any) {
	if a.verbose {
		fmt.Printf(format, args...)
	}
}
