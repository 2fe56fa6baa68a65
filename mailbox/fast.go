package mailbox

import (
	"sync/atomic"

	"code.hybscloud.com/lfq"

	"github.com/lguibr/greenroom/message"
)

// fastMailbox is the MPSC variant: FIFO per individual sender, arbitrary
// interleaving across senders. Backed by lfq.MPSC (FAA/SCQ-style), required
// whenever an actor can have multiple concurrent senders.
type fastMailbox struct {
	q    *lfq.MPSC[*message.Message]
	size atomic.Int64
}

func newFastMailbox(capacity int) *fastMailbox {
	return &fastMailbox{q: lfq.NewMPSC[*message.Message](capacity)}
}

func (m *fastMailbox) Send(msg *message.Message) error {
	if err := m.q.Enqueue(&msg); err != nil {
		return ErrFull
	}
	m.size.Add(1)
	return nil
}

func (m *fastMailbox) Receive() (*message.Message, error) {
	msg, err := m.q.Dequeue()
	if err != nil {
		return nil, ErrEmpty
	}
	m.size.Add(-1)
	return msg, nil
}

func (m *fastMailbox) SendBatch(msgs []*message.Message) (int, error) {
	for i, msg := range msgs {
		if err := m.Send(msg); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

func (m *fastMailbox) ReceiveBatch(out []*message.Message) int {
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

func (m *fastMailbox) Len() int {
	n := m.size.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

func (m *fastMailbox) Cap() int { return m.q.Cap() }

func (m *fastMailbox) Clear() {
	for {
		msg, err := m.Receive()
		if err != nil {
			return
		}
		msg.Release()
	}
}
