package system

import (
	"errors"
	"fmt"

	"github.com/lguibr/greenroom/actor"
)

// Sentinel and typed errors for the kinds of spec.md section 7 not already
// covered by mailbox.ErrFull or actor.ErrTerminated.
var (
	// ErrSystemShutdown is returned by SpawnChild (and so Spawn and
	// SpawnSystemInternal) on a System at or past StateTerminating.
	ErrSystemShutdown = errors.New("system: shutdown in progress")
	// ErrSchedulerQueueFull mirrors scheduler.ErrNotRunning/global queue
	// overflow surfaced at the system boundary.
	ErrSchedulerQueueFull = errors.New("system: scheduler queue full")
)

// ErrActorNotFound is returned by Watch when the target resolves to nothing
// in the registry (Find reports a miss through its bool result instead).
type ErrActorNotFound struct {
	Path actor.Path
}

func (e *ErrActorNotFound) Error() string {
	return fmt.Sprintf("system: actor not found: %s", e.Path)
}

// ErrActorAlreadyExists is returned by Spawn when the requested path is
// already registered.
type ErrActorAlreadyExists struct {
	Path actor.Path
}

func (e *ErrActorAlreadyExists) Error() string {
	return fmt.Sprintf("system: actor already exists: %s", e.Path)
}

// ErrSupervisionFailed wraps the reason a restart budget was exhausted.
type ErrSupervisionFailed struct {
	Path   actor.Path
	Reason error
}

func (e *ErrSupervisionFailed) Error() string {
	return fmt.Sprintf("system: supervision failed for %s: %v", e.Path, e.Reason)
}

func (e *ErrSupervisionFailed) Unwrap() error { return e.Reason }
