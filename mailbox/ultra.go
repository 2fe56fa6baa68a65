package mailbox

import (
	"sync/atomic"
	"time"
	"unsafe"

	"code.hybscloud.com/lfq"
	"code.hybscloud.com/spin"

	"github.com/lguibr/greenroom/message"
)

// shardCount is the sharded mailbox's ring count (N=4 per spec.md section
// 4.1).
const shardCount = 4

// ultraMailbox is the sharded multi-ring variant. Each of its four rings is
// an independent lfq.SPSC; a sender picks a ring by hashing a fast
// thread-local seed against the low bits of the clock, and on contention
// retries a bounded number of times across rings before giving up.
//
// Ordering contract: FIFO only per (sender, chosen-ring) — total order is
// not preserved even for a single sender, because successive sends from
// the same goroutine can land on different rings. This is the documented
// trade-off of spec.md section 4.1.
type ultraMailbox struct {
	rings [shardCount]*lfq.SPSC[*message.Message]
	size  atomic.Int64
}

func newUltraMailbox(capacity int) *ultraMailbox {
	perRing := capacity / shardCount
	if perRing < 2 {
		perRing = 2
	}
	m := &ultraMailbox{}
	for i := range m.rings {
		m.rings[i] = lfq.NewSPSC[*message.Message](perRing)
	}
	return m
}

// shardSeed is a per-goroutine-ish value combined with the clock to choose
// a ring; goroutines don't expose a stable id in Go, so the address of a
// stack-local byte stands in for "thread-id" the way spec.md phrases it —
// it is stable for the lifetime of one Send call, which is all shard
// selection needs.
func shardSeed() uint64 {
	var local byte
	return uint64(uintptr(unsafe.Pointer(&local)))
}

func ringIndex(attempt int) int {
	seed := shardSeed() ^ uint64(time.Now().UnixNano())
	return int((seed+uint64(attempt))&(shardCount-1))
}

const maxShardRetries = shardCount * 2

func (m *ultraMailbox) Send(msg *message.Message) error {
	sw := spin.Wait{}
	for attempt := 0; attempt < maxShardRetries; attempt++ {
		idx := ringIndex(attempt)
		if err := m.rings[idx].Enqueue(&msg); err == nil {
			m.size.Add(1)
			return nil
		}
		sw.Once()
	}
	return ErrFull
}

// Receive polls rings in index order and returns the first non-empty slot;
// overall emptiness requires all rings empty, per spec.md section 4.1.
func (m *ultraMailbox) Receive() (*message.Message, error) {
	for idx := 0; idx < shardCount; idx++ {
		if msg, err := m.rings[idx].Dequeue(); err == nil {
			m.size.Add(-1)
			return msg, nil
		}
	}
	return nil, ErrEmpty
}

func (m *ultraMailbox) SendBatch(msgs []*message.Message) (int, error) {
	for i, msg := range msgs {
		if err := m.Send(msg); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

func (m *ultraMailbox) ReceiveBatch(out []*message.Message) int {
	n := 0
	for n < len(out) {
		msg, err := m.Receive()
		if err != nil {
			break
		}
		out[n] = msg
		n++
	}
	return n
}

func (m *ultraMailbox) Len() int {
	n := m.size.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

func (m *ultraMailbox) Cap() int {
	total := 0
	for _, r := range m.rings {
		total += r.Cap()
	}
	return total
}

func (m *ultraMailbox) Clear() {
	for {
		msg, err := m.Receive()
		if err != nil {
			return
		}
		msg.Release()
	}
}
