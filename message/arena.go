package message

import (
	"sync"
	"sync/atomic"
)

// mediumSlot is one pre-allocated medium-class (<=1KB) payload buffer.
type mediumSlot struct {
	buf [mediumMax]byte
	len int
}

// mediumPool is the size-class free-list for medium payloads. It is backed
// by sync.Pool, which gives each goroutine a per-P fast path (pop/push the
// local cache) with a shared overflow for the slow path — the Go-idiomatic
// rendition of spec.md section 4.2's "one free-list per class per thread"
// requirement; Go exposes no stable per-OS-thread storage, and sync.Pool is
// the standard library's answer to exactly this shape of problem.
var mediumPool = newArenaPool(func() *mediumSlot { return &mediumSlot{} })

// arenaPool wraps sync.Pool with hit/miss counters so the runtime can
// report the fast-path hit-rate spec.md section 4.2 expects to stay high
// under steady load.
type arenaPool struct {
	pool   sync.Pool
	hits   uint64
	misses uint64
}

func newArenaPool(newFn func() *mediumSlot) *arenaPool {
	p := &arenaPool{}
	p.pool.New = func() any {
		atomic.AddUint64(&p.misses, 1)
		return newFn()
	}
	return p
}

func (p *arenaPool) get() *mediumSlot {
	before := atomic.LoadUint64(&p.misses)
	slot := p.pool.Get().(*mediumSlot)
	if atomic.LoadUint64(&p.misses) == before {
		atomic.AddUint64(&p.hits, 1)
	}
	return slot
}

func (p *arenaPool) put(s *mediumSlot) {
	s.len = 0
	p.pool.Put(s)
}

// Stats reports cumulative fast-path hits and general-allocator fallbacks
// (slow-path) for the medium size class.
func (p *arenaPool) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&p.hits), atomic.LoadUint64(&p.misses)
}

func acquireMediumSlot() *mediumSlot {
	return mediumPool.get()
}

func releaseMediumSlot(s *mediumSlot) {
	mediumPool.put(s)
}

// MediumPoolStats exposes the medium size class's fast/slow-path counters
// for diagnostics and tests.
func MediumPoolStats() (hits, misses uint64) {
	return mediumPool.Stats()
}
