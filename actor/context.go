package actor

import "github.com/lguibr/greenroom/message"

// SystemHandle is the subset of system.System a running Context exposes,
// per spec.md section 4.4 ("a system handle"). Kept here (rather than
// importing system) for the same reason Host is: actor must not depend on
// system.
type SystemHandle interface {
	// SpawnChild creates a new actor as a child of parent.
	SpawnChild(parent Ref, factory Producer, name string) (Ref, error)
	// Find resolves an exact actor path.
	Find(path Path) (Ref, bool)
	// Stop requests graceful shutdown of the given actor.
	Stop(ref Ref)
	// Watch registers watcher as interested in target's termination.
	Watch(watcher, target Ref) error
	// Unwatch deregisters watcher from target.
	Unwatch(watcher, target Ref) error
	// NotifyTerminated fans out a Terminated notification to who's watchers
	// and removes who from the registry.
	NotifyTerminated(who Ref)
	// Escalate reports a failure that who's own strategy passes upward.
	// system.System's implementation stops who's whole subtree; it does not
	// consult the parent's supervisor strategy.
	Escalate(who Ref, reason error)
}

// Context is passed to Behavior.Receive for every message invocation, per
// spec.md section 4.4.
type Context interface {
	Self() Ref
	// Sender returns the sender of the current message and whether one
	// was stamped.
	Sender() (Ref, bool)
	Parent() Ref
	Children() []Ref
	SpawnChild(factory Producer, name string) (Ref, error)
	StopSelf()
	// Become replaces the actor's behavior for subsequent messages.
	Become(b Behavior)
	Stash(msg *message.Message)
	UnstashAll()
	Watch(other Ref) error
	Unwatch(other Ref) error
	System() SystemHandle
}

// actorContext is the concrete Context bound to one message invocation.
type actorContext struct {
	a      *Actor
	sender Ref
	hasSnd bool
}

func (c *actorContext) Self() Ref { return c.a.self }

func (c *actorContext) Sender() (Ref, bool) { return c.sender, c.hasSnd }

func (c *actorContext) Parent() Ref { return c.a.parent }

func (c *actorContext) Children() []Ref {
	c.a.mu.RLock()
	defer c.a.mu.RUnlock()
	out := make([]Ref, 0, len(c.a.children))
	for _, ref := range c.a.children {
		out = append(out, ref)
	}
	return out
}

func (c *actorContext) SpawnChild(factory Producer, name string) (Ref, error) {
	ref, err := c.a.sys.SpawnChild(c.a.self, factory, name)
	if err != nil {
		return Ref{}, err
	}
	c.a.mu.Lock()
	c.a.children[ref.ID()] = ref
	c.a.mu.Unlock()
	return ref, nil
}

func (c *actorContext) StopSelf() {
	c.a.sys.Stop(c.a.self)
}

func (c *actorContext) Become(b Behavior) {
	c.a.behavior = b
}

func (c *actorContext) Stash(msg *message.Message) {
	c.a.stash.Push(msg)
}

func (c *actorContext) UnstashAll() {
	for _, msg := range c.a.stash.Drain() {
		_ = c.a.mailboxSendRaw(msg)
	}
}

func (c *actorContext) Watch(other Ref) error {
	return c.a.sys.Watch(c.a.self, other)
}

func (c *actorContext) Unwatch(other Ref) error {
	return c.a.sys.Unwatch(c.a.self, other)
}

func (c *actorContext) System() SystemHandle { return c.a.sys }
