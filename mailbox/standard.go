package mailbox

import (
	"sync/atomic"

	"code.hybscloud.com/lfq"

	"github.com/lguibr/greenroom/message"
)

// standardMailbox is the SPSC variant: FIFO per (producer, consumer) pair,
// but only safe with exactly one sender. Backed directly by lfq.SPSC, whose
// cached-index Lamport ring is the algorithm spec.md section 4.1 describes
// for the "standard" mailbox.
type standardMailbox struct {
	ring *lfq.SPSC[*message.Message]
	size atomic.Int64 // best-effort count; lfq.SPSC exposes no accessor of its own
}

func newStandardMailbox(capacity int) *standardMailbox {
	return &standardMailbox{ring: lfq.NewSPSC[*message.Message](capacity)}
}

func (m *standardMailbox) Send(msg *message.Message) error {
	if err := m.ring.Enqueue(&msg); err != nil {
		return ErrFull
	}
	m.size.Add(1)
	return nil
}

func (m *standardMailbox) Receive() (*message.Message, error) {
	msg, err := m.ring.Dequeue()
	if err != nil {
		return nil, ErrEmpty
	}
	m.size.Add(-1)
	return msg, nil
}

func (m *standardMailbox) SendBatch(msgs []*message.Message) (int, error) {
	for i, msg := range msgs {
		if err := m.Send(msg); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

func (m *standardMailbox) ReceiveBatch(out []*message.Message) int {
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

func (m *standardMailbox) Len() int {
	n := m.size.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

func (m *standardMailbox) Cap() int { return m.ring.Cap() }

func (m *standardMailbox) Clear() {
	for {
		msg, err := m.Receive()
		if err != nil {
			return
		}
		msg.Release()
	}
}
