package system

import (
	"strings"
	"sync"

	"github.com/lguibr/greenroom/actor"
)

// registry is the system-wide path->actor and id->actor index plus the
// watched->watchers fan-out table, per spec.md section 4.5 ("the system
// owns ... a registry (path->ActorRef), a watchers table"). Guarded by one
// mutex, never held across a user callback. Inserts, removals, lookups and
// watch updates are map operations; selection, countUnder and refsUnder
// scan the whole path index.
type registry struct {
	mu       sync.RWMutex
	byPath   map[actor.Path]*actor.Actor
	byID     map[actor.ID]*actor.Actor
	watchers map[actor.ID]map[actor.ID]actor.Ref // target id -> watcher id -> watcher ref
}

func newRegistry() *registry {
	return &registry{
		byPath:   make(map[actor.Path]*actor.Actor),
		byID:     make(map[actor.ID]*actor.Actor),
		watchers: make(map[actor.ID]map[actor.ID]actor.Ref),
	}
}

func (r *registry) insert(a *actor.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPath[a.Ref().Path()]; exists {
		return &ErrActorAlreadyExists{Path: a.Ref().Path()}
	}
	r.byPath[a.Ref().Path()] = a
	r.byID[a.Ref().ID()] = a
	return nil
}

func (r *registry) remove(id actor.ID, path actor.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPath, path)
	delete(r.byID, id)
	delete(r.watchers, id)
}

func (r *registry) lookupPath(path actor.Path) (*actor.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byPath[path]
	return a, ok
}

func (r *registry) lookupID(id actor.ID) (*actor.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// selection returns every registered actor whose path matches pattern, per
// SPEC_FULL.md's actorSelection supplement (exact match plus a single
// trailing wildcard segment).
func (r *registry) selection(pattern actor.Path) []actor.Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []actor.Ref
	for p, a := range r.byPath {
		if pattern.Matches(p) {
			out = append(out, a.Ref())
		}
	}
	return out
}

func (r *registry) countUnder(prefix actor.Path) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for p := range r.byPath {
		if isUnder(p, prefix) && p != prefix {
			n++
		}
	}
	return n
}

// isUnder reports whether p is prefix itself or a descendant of it. Root is
// special-cased since Path.Child builds "/name" (not "//name") under "/".
func isUnder(p, prefix actor.Path) bool {
	if p == prefix {
		return true
	}
	ps, pre := string(p), string(prefix)
	if pre == string(actor.RootPath) {
		return strings.HasPrefix(ps, "/")
	}
	return strings.HasPrefix(ps, pre+"/")
}

// refsUnder returns every registered actor whose path is prefix itself or a
// descendant of it, resolved straight from the path index rather than any
// in-actor children bookkeeping — so it reflects every SpawnChild call,
// including the common top-level system.Spawn(parent=/user, ...) path that
// never touches an actor's own children map.
func (r *registry) refsUnder(prefix actor.Path) []actor.Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []actor.Ref
	for p, a := range r.byPath {
		if isUnder(p, prefix) {
			out = append(out, a.Ref())
		}
	}
	return out
}

func (r *registry) watch(watcher, target actor.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.watchers[target.ID()]
	if !ok {
		set = make(map[actor.ID]actor.Ref)
		r.watchers[target.ID()] = set
	}
	set[watcher.ID()] = watcher
}

func (r *registry) unwatch(watcher, target actor.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.watchers[target.ID()]; ok {
		delete(set, watcher.ID())
	}
}

// watchersOf returns (and consumes) the watcher set for target, used once
// at termination to fan out Terminated.
func (r *registry) watchersOf(target actor.ID) []actor.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.watchers[target]
	out := make([]actor.Ref, 0, len(set))
	for _, ref := range set {
		out = append(out, ref)
	}
	delete(r.watchers, target)
	return out
}
