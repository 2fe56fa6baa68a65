// Package mailbox implements the bounded, never-blocking message queues
// owned by individual actors, per spec.md section 4.1.
//
// Three variants are offered behind one interface: Standard (SPSC),
// Fast (MPSC), and Ultra (four-ring sharded). All three are built on
// code.hybscloud.com/lfq, whose SPSC and MPSC algorithms already implement
// the cached-index ring and FAA/SCQ queue spec.md describes.
package mailbox

import (
	"errors"

	"github.com/lguibr/greenroom/message"
)

// ErrFull is returned by Send when the mailbox has no free slot.
var ErrFull = errors.New("mailbox: full")

// ErrEmpty is a sentinel, not a failure: Receive returns it when the
// mailbox currently has no message.
var ErrEmpty = errors.New("mailbox: empty")

// Mailbox is the uniform contract shared by every variant: send/receive
// (single and batch), length, capacity and clear, never blocking. There is
// no peek operation: a message can only be observed by dequeuing it.
type Mailbox interface {
	// Send enqueues msg. Returns ErrFull if the mailbox is at capacity.
	Send(msg *message.Message) error
	// Receive dequeues the next message in this mailbox's ordering
	// contract. Returns ErrEmpty if nothing is queued.
	Receive() (*message.Message, error)
	// SendBatch enqueues up to len(msgs) messages, stopping at the first
	// failure, and returns the number actually enqueued.
	SendBatch(msgs []*message.Message) (int, error)
	// ReceiveBatch dequeues up to len(out) messages into out and returns
	// the number actually dequeued.
	ReceiveBatch(out []*message.Message) int
	// Len returns a best-effort count of queued messages.
	Len() int
	// Cap returns the mailbox capacity.
	Cap() int
	// Clear drains and releases every queued message, invoking
	// message.Message.Release on each so owned/pooled payloads are freed
	// exactly once (spec.md section 3's invariant).
	Clear()
}

// New constructs a Mailbox of the given variant and capacity (rounded up to
// a power of two by the underlying queue).
func New(variant Variant, capacity int) Mailbox {
	switch variant {
	case Fast:
		return newFastMailbox(capacity)
	case Ultra:
		return newUltraMailbox(capacity)
	default:
		return newStandardMailbox(capacity)
	}
}

// Variant mirrors config.MailboxVariant without importing config, keeping
// mailbox below config in the dependency order.
type Variant int

const (
	Standard Variant = iota
	Fast
	Ultra
)
