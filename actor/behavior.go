// Package actor implements the actor state machine, context, and
// supervision discipline of spec.md section 4.4. It stays ignorant of the
// registry/guardian tree (that's system's job) and talks to it only
// through the Host interface, so two independent actor systems never share
// state.
package actor

import "github.com/lguibr/greenroom/message"

// Strategy is a supervisor's response to a child's failure, per spec.md
// section 4.4.
type Strategy int

const (
	StrategyRestart Strategy = iota
	StrategyStop
	StrategyResume
	StrategyEscalate
)

// Behavior is the fixed capability set of spec.md section 4.4. Only
// Receive is required; the lifecycle hooks and the supervisor strategy are
// optional and detected by type assertion (PreStarter, PostStopper, and so
// on below) — the set of hooks is closed, so a handful of named optional
// interfaces is the idiomatic Go rendition of "capability record" rather
// than an open class hierarchy.
type Behavior interface {
	// Receive handles one message. A returned error is a behavior failure
	// and is routed through the actor's supervisor strategy.
	Receive(ctx Context, msg *message.Message) error
}

// PreStarter is implemented by behaviors that need setup before the first
// message is processed.
type PreStarter interface {
	PreStart(ctx Context) error
}

// PostStopper is implemented by behaviors that need teardown after the
// actor stops accepting messages.
type PostStopper interface {
	PostStop(ctx Context) error
}

// PreRestarter is implemented by behaviors that need to react just before
// a restart (e.g. to persist in-flight work).
type PreRestarter interface {
	PreRestart(ctx Context, reason error) error
}

// PostRestarter is implemented by behaviors that need to react just after
// a restart, before the actor resumes processing.
type PostRestarter interface {
	PostRestart(ctx Context) error
}

// SupervisorStrategizer is implemented by behaviors that want a
// non-default supervision strategy. The default, used when a behavior
// doesn't implement this, is StrategyRestart.
type SupervisorStrategizer interface {
	SupervisorStrategy() Strategy
}

func strategyOf(b Behavior) Strategy {
	if s, ok := b.(SupervisorStrategizer); ok {
		return s.SupervisorStrategy()
	}
	return StrategyRestart
}

// Producer constructs a new Behavior instance; each spawn gets its own.
type Producer func() Behavior
