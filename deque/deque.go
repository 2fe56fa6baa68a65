// Package deque implements the worker-local Chase-Lev work-stealing deque
// of spec.md section 4.3: the owner pushes and pops at "bottom"; thieves
// CAS at "top".
package deque

import (
	"code.hybscloud.com/atomix"
)

// Deque is a fixed-capacity, power-of-two Chase-Lev deque of Task. Capacity
// is fixed rather than resizing (unlike the classic paper): spec.md section
// 3 specifies a fixed-capacity local deque with global-queue overflow, so a
// full deque simply reports false and the caller falls back to the global
// queue.
type Deque struct {
	_      pad
	top    atomix.Uint64 // thieves CAS here
	_      pad
	bottom atomix.Uint64 // owner writes here
	_      pad
	buf    []Task
	mask   uint64
}

// Task is the unit of work stored in the deque. It mirrors
// scheduler.Task's shape without importing scheduler (deque sits below
// scheduler in the dependency order of spec.md section 2); scheduler.Task
// is defined to satisfy this interface.
type Task interface {
	Execute()
	Name() string
}

type pad [64]byte

// New creates a deque with the given capacity, rounded up to the next
// power of two (default 4096 per spec.md section 6).
func New(capacity int) *Deque {
	n := roundToPow2(capacity)
	return &Deque{
		buf:  make([]Task, n),
		mask: uint64(n - 1),
	}
}

func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PushBottom is called only by the deque's owner. Returns false if the
// deque is at capacity; the caller should fall back to the global queue.
func (d *Deque) PushBottom(t Task) bool {
	b := d.bottom.LoadRelaxed()
	top := d.top.LoadAcquire()
	if b-top >= uint64(len(d.buf)) {
		return false
	}
	d.buf[b&d.mask] = t
	d.bottom.StoreRelease(b + 1)
	return true
}

// PopBottom is called only by the deque's owner. Returns (nil, false) when
// the deque is empty, racing correctly against concurrent Steal calls on
// the single remaining element.
func (d *Deque) PopBottom() (Task, bool) {
	b := d.bottom.LoadRelaxed()
	if b == 0 {
		return nil, false
	}
	newB := b - 1
	d.bottom.StoreRelease(newB)
	top := d.top.LoadAcquire()

	if top > newB {
		// Deque was already empty; restore bottom and bail.
		d.bottom.StoreRelease(b)
		return nil, false
	}

	t := d.buf[newB&d.mask]
	if top == newB {
		// Last element: race a thief for it via CAS on top.
		if !d.top.CompareAndSwapAcqRel(top, top+1) {
			d.bottom.StoreRelease(b)
			return nil, false
		}
		d.bottom.StoreRelease(b)
		return t, true
	}
	return t, true
}

// Steal is called by any thief thread. Returns (nil, false) when the
// deque is empty or lost a race against the owner or another thief.
func (d *Deque) Steal() (Task, bool) {
	top := d.top.LoadAcquire()
	bottom := d.bottom.LoadAcquire()
	if top >= bottom {
		return nil, false
	}
	t := d.buf[top&d.mask]
	if !d.top.CompareAndSwapAcqRel(top, top+1) {
		return nil, false
	}
	return t, true
}

// Len returns a best-effort count of queued tasks. Racy by construction:
// useful for stats and load-balance heuristics, not for correctness.
func (d *Deque) Len() int {
	b := d.bottom.LoadAcquire()
	t := d.top.LoadAcquire()
	if b < t {
		return 0
	}
	return int(b - t)
}

// Cap returns the deque's fixed capacity.
func (d *Deque) Cap() int { return len(d.buf) }
