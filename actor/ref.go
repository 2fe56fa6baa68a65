package actor

import (
	"errors"
	"strings"

	"github.com/lguibr/greenroom/message"
)

// ID is a process-unique, monotonically generated actor identifier, never
// reused (spec.md section 3).
type ID uint64

// Path is an ordered sequence of name segments rooted at "/", with
// reserved children "/user" and "/system" (spec.md section 3).
type Path string

const (
	RootPath   Path = "/"
	UserPath   Path = "/user"
	SystemPath Path = "/system"
)

// Child returns the path of a named child of p.
func (p Path) Child(name string) Path {
	if p == RootPath {
		return Path("/" + name)
	}
	return Path(string(p) + "/" + name)
}

// Matches reports whether p satisfies the selection pattern, which
// supports exact match and a single trailing "*" wildcard segment (e.g.
// "/user/room-*" matches "/user/room-1"), per SPEC_FULL.md's
// ActorSelection supplement.
func (pattern Path) Matches(p Path) bool {
	if pattern == p {
		return true
	}
	ps := string(pattern)
	if !strings.HasSuffix(ps, "*") {
		return false
	}
	prefix := strings.TrimSuffix(ps, "*")
	if !strings.HasPrefix(string(p), prefix) {
		return false
	}
	// The wildcard covers the rest of one segment only, not descendants.
	return !strings.Contains(strings.TrimPrefix(string(p), prefix), "/")
}

// ErrTerminated is returned by Send when the target actor is in a terminal
// state (spec.md section 7's ActorTerminated).
var ErrTerminated = errors.New("actor: terminated")

// Host is the narrow surface Ref needs from whatever owns the registry
// (system.System implements it). Keeping it here, rather than importing
// system, avoids a system<->actor import cycle and matches spec.md
// section 9's "no owning back-pointers, resolve through the registry"
// guidance: a Ref never points at an *Actor directly.
type Host interface {
	DeliverUser(id ID, sender *Ref, payload message.Payload) error
	DeliverSystem(id ID, sender *Ref, kind message.SystemKind) error
	StateOf(id ID) (State, bool)
}

// Ref is a lightweight, copyable handle to an actor. Equality is by
// address (ID + host), per spec.md section 3; it never owns the actor.
type Ref struct {
	id   ID
	path Path
	host Host
}

// NewRef is used by system when registering a newly spawned actor.
func NewRef(id ID, path Path, host Host) Ref {
	return Ref{id: id, path: path, host: host}
}

// ID returns the actor's identifier.
func (r Ref) ID() ID { return r.id }

// Path returns the actor's path.
func (r Ref) Path() Path { return r.path }

// IsZero reports whether r is the zero Ref (no target).
func (r Ref) IsZero() bool { return r.host == nil }

// Equal reports address equality: same id, same host.
func (r Ref) Equal(other Ref) bool {
	return r.id == other.id && r.host == other.host
}

// Send enqueues a user message carrying payload, optionally stamping
// sender. Returns ErrTerminated if the target is in a terminal state, or
// mailbox.ErrFull (surfaced as-is) on overflow, per spec.md section 4.4.
func (r Ref) Send(payload message.Payload, sender *Ref) error {
	if r.IsZero() {
		return ErrTerminated
	}
	return r.host.DeliverUser(r.id, sender, payload)
}

// SendUser implements message.Addressable for reply-to targets.
func (r Ref) SendUser(payload message.Payload) error {
	return r.Send(payload, nil)
}

// SendSystem delivers a system message of the given kind.
func (r Ref) SendSystem(kind message.SystemKind) error {
	if r.IsZero() {
		return ErrTerminated
	}
	return r.host.DeliverSystem(r.id, nil, kind)
}

// State returns the actor's current lifecycle state, or (StateTerminated,
// false) if the actor is no longer known to the host.
func (r Ref) State() (State, bool) {
	if r.IsZero() {
		return StateTerminated, false
	}
	return r.host.StateOf(r.id)
}
