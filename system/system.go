// Package system implements the actor system of spec.md section 4.5: name,
// scheduler handle, registry, watchers table, and the three root guardians
// "/", "/user", "/system".
package system

import (
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/google/uuid"

	"github.com/lguibr/greenroom/actor"
	"github.com/lguibr/greenroom/config"
	"github.com/lguibr/greenroom/mailbox"
	"github.com/lguibr/greenroom/message"
	"github.com/lguibr/greenroom/scheduler"
)

// State is the system's own lifecycle: starting -> running -> terminating
// -> terminated, per spec.md section 4.5.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateTerminating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// System owns one scheduler, one registry, and the three guardians. Two
// Systems never share state (spec.md section 9).
type System struct {
	name  string
	cfg   config.Config
	sched *scheduler.Scheduler
	reg   *registry

	state   atomix.Uint64
	idCtr   atomix.Uint64

	root   actor.Ref
	user   actor.Ref
	system actor.Ref
}

// New constructs a System and starts its scheduler and guardians. Mirrors
// the teacher's Engine.NewEngine / RoomManagerActor bootstrap: build the
// scheduler, then spawn the fixed supervision tree before accepting
// outside spawns.
func New(name string, cfg config.Config) (*System, error) {
	s := &System{
		name:  name,
		cfg:   cfg,
		sched: scheduler.New(cfg),
		reg:   newRegistry(),
	}
	s.state.StoreRelease(uint64(StateStarting))

	if err := s.sched.Start(); err != nil {
		return nil, fmt.Errorf("system: start scheduler: %w", err)
	}

	s.root = s.spawnGuardian(actor.RootPath, guardianProducer(s, actor.RootPath))
	s.system = s.spawnGuardian(actor.SystemPath, guardianProducer(s, actor.SystemPath))
	s.user = s.spawnGuardian(actor.UserPath, guardianProducer(s, actor.UserPath))

	s.state.StoreRelease(uint64(StateRunning))
	return s, nil
}

func (s *System) isShuttingDown() bool {
	st := State(s.state.LoadAcquire())
	return st == StateTerminating || st == StateTerminated
}

// State reports the system's current lifecycle state.
func (s *System) State() State { return State(s.state.LoadAcquire()) }

// nextID returns the next process-unique actor id for this System.
func (s *System) nextID() actor.ID {
	return actor.ID(s.idCtr.AddAcqRel(1))
}

func (s *System) spawnGuardian(path actor.Path, factory actor.Producer) actor.Ref {
	a := actor.New(actor.Params{
		ID:            s.nextID(),
		Path:          path,
		Sys:           s,
		Sched:         s.sched,
		Factory:       factory,
		MailboxKind:   mailbox.Variant(s.cfg.MailboxVariant),
		MailboxCap:    s.cfg.MailboxCapacity,
		BatchSize:     s.cfg.BatchSize,
		MaxRestarts:   s.cfg.MaxRestarts,
		RestartWindow: s.cfg.RestartWindow,
		Verbose:       s.cfg.Verbose,
	}, s)
	if err := s.reg.insert(a); err != nil {
		panic(err) // guardians are bootstrap-time only, a collision means a programming error
	}
	_ = a.EnqueueSystem(nil, message.SysStart)
	return a.Ref()
}

// Spawn creates a new actor under /user, per spec.md section 4.5's
// actorOf. name may be empty, in which case a uuid-derived name is
// generated.
func (s *System) Spawn(factory actor.Producer, name string) (actor.Ref, error) {
	return s.SpawnChild(s.user, factory, name)
}

// SpawnSystemInternal creates a new actor under /system, per spec.md
// section 4.5's role for /system as the home of runtime-internal actors
// (as opposed to /user's application actors). Package ask uses this to
// spawn its throwaway reply actors.
func (s *System) SpawnSystemInternal(factory actor.Producer, name string) (actor.Ref, error) {
	return s.SpawnChild(s.system, factory, name)
}

// SpawnChild implements actor.SystemHandle: creates a new actor as a child
// of parent, used both by System.Spawn and by Context.SpawnChild.
func (s *System) SpawnChild(parent actor.Ref, factory actor.Producer, name string) (actor.Ref, error) {
	if s.isShuttingDown() {
		return actor.Ref{}, ErrSystemShutdown
	}
	if name == "" {
		name = "actor-" + uuid.New().String()[:8]
	}
	path := parent.Path().Child(name)

	a := actor.New(actor.Params{
		ID:            s.nextID(),
		Path:          path,
		Parent:        parent,
		Sys:           s,
		Sched:         s.sched,
		Factory:       factory,
		MailboxKind:   mailbox.Variant(s.cfg.MailboxVariant),
		MailboxCap:    s.cfg.MailboxCapacity,
		BatchSize:     s.cfg.BatchSize,
		MaxRestarts:   s.cfg.MaxRestarts,
		RestartWindow: s.cfg.RestartWindow,
		Verbose:       s.cfg.Verbose,
	}, s)

	if err := s.reg.insert(a); err != nil {
		return actor.Ref{}, err
	}
	_ = a.EnqueueSystem(nil, message.SysStart)
	return a.Ref(), nil
}

// Stop requests graceful shutdown of ref and its entire subtree, per
// spec.md section 4.5 ("stopping an actor stops its descendants"). Subtree
// membership is resolved from the registry's path index, not from any
// in-actor children map, so it reaches actors spawned via the common
// top-level system.Spawn/SpawnChild(parent, ...) path too.
func (s *System) Stop(ref actor.Ref) {
	for _, r := range s.reg.refsUnder(ref.Path()) {
		s.stopOne(r)
	}
}

func (s *System) stopOne(ref actor.Ref) {
	if a, ok := s.reg.lookupID(ref.ID()); ok {
		_ = a.EnqueueSystem(nil, message.SysStop)
	}
}

// Find resolves an exact actor path, per spec.md section 4.5's findActor.
func (s *System) Find(path actor.Path) (actor.Ref, bool) {
	a, ok := s.reg.lookupPath(path)
	if !ok {
		return actor.Ref{}, false
	}
	return a.Ref(), true
}

// Selection implements actorSelection: a lazily-nothing, eagerly-evaluated
// list of refs matching pattern (wildcard support per actor.Path.Matches).
func (s *System) Selection(pattern actor.Path) []actor.Ref {
	return s.reg.selection(pattern)
}

// Watch registers watcher as interested in target's termination.
func (s *System) Watch(watcher, target actor.Ref) error {
	if _, ok := s.reg.lookupID(target.ID()); !ok {
		return &ErrActorNotFound{Path: target.Path()}
	}
	s.reg.watch(watcher, target)
	return nil
}

// Unwatch deregisters watcher from target.
func (s *System) Unwatch(watcher, target actor.Ref) error {
	s.reg.unwatch(watcher, target)
	return nil
}

// NotifyTerminated implements actor.SystemHandle: fans out Terminated to
// every watcher of who, then removes who from the registry.
func (s *System) NotifyTerminated(who actor.Ref) {
	whoRef := who
	for _, w := range s.reg.watchersOf(who.ID()) {
		if a, ok := s.reg.lookupID(w.ID()); ok {
			_ = a.EnqueueSystem(&whoRef, message.SysTerminated)
		}
	}
	s.reg.remove(who.ID(), who.Path())
}

// Escalate handles a failure an actor's own supervisor strategy declined to
// resolve. spec.md section 7 only pins down the top-of-chain case ("a
// guardian with no parent logs and stops the subtree"); intermediate
// re-supervision by an arbitrary ancestor is left open, so escalate here
// always stops the failing actor's subtree (Stop already cascades; see
// DESIGN.md's Escalate entry for the reasoning), logging when Verbose.
func (s *System) Escalate(who actor.Ref, reason error) {
	if s.cfg.Verbose {
		fmt.Printf("system: escalation from %s: %v, stopping subtree\n", who.Path(), reason)
	}
	s.Stop(who)
}

// DeliverUser implements actor.Host.
func (s *System) DeliverUser(id actor.ID, sender *actor.Ref, payload message.Payload) error {
	a, ok := s.reg.lookupID(id)
	if !ok {
		return actor.ErrTerminated
	}
	return a.EnqueueUser(sender, payload)
}

// DeliverSystem implements actor.Host.
func (s *System) DeliverSystem(id actor.ID, sender *actor.Ref, kind message.SystemKind) error {
	a, ok := s.reg.lookupID(id)
	if !ok {
		return actor.ErrTerminated
	}
	return a.EnqueueSystem(sender, kind)
}

// StateOf implements actor.Host.
func (s *System) StateOf(id actor.ID) (actor.State, bool) {
	a, ok := s.reg.lookupID(id)
	if !ok {
		return actor.StateTerminated, false
	}
	return a.State(), true
}

// Shutdown implements spec.md section 4.5: stop /user, wait for the
// user-actor count to drain (or shutdown-timeout-ms), stop /system, then
// stop the scheduler. Idempotent.
func (s *System) Shutdown() {
	if !s.state.CompareAndSwapAcqRel(uint64(StateRunning), uint64(StateTerminating)) {
		return
	}

	s.Stop(s.user)
	deadline := time.Now().Add(s.cfg.ShutdownTimeout)
	for time.Now().Before(deadline) {
		if s.reg.countUnder(actor.UserPath) == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.Stop(s.system)
	s.Stop(s.root)

	_ = s.sched.Stop(func(t scheduler.Task) {
		if s.cfg.Verbose {
			fmt.Printf("system: dropping queued task %s at shutdown\n", t.Name())
		}
	})

	s.state.StoreRelease(uint64(StateTerminated))
}

// Scheduler exposes the underlying scheduler for diagnostics (worker
// stats in examples/tests).
func (s *System) Scheduler() *scheduler.Scheduler { return s.sched }
