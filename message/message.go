// Package message defines the wire-level value exchanged between actors:
// a small tagged record plus a size-classed payload.
package message

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Tag distinguishes the three message kinds of spec.md section 3.
type Tag uint8

const (
	TagUser Tag = iota
	TagSystem
	TagControl
)

// SystemKind enumerates the fixed system-message sub-tags, each carrying a
// fixed priority per spec.md section 3.
type SystemKind uint8

const (
	SysStart SystemKind = iota
	SysStop
	SysRestart
	SysPing
	SysPong
	SysHeartbeat
	SysWatch
	SysUnwatch
	SysTerminated
	SysKill
	SysExit
)

// Priority is the scheduling priority carried by both messages and tasks.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Priority returns the fixed priority for a system message kind, per the
// table in spec.md section 3 (kill/stop=critical, restart=high, ping=low).
func (k SystemKind) Priority() Priority {
	switch k {
	case SysKill, SysStop:
		return PriorityCritical
	case SysRestart:
		return PriorityHigh
	case SysPing, SysPong, SysHeartbeat:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// idCounter is the process-wide monotonic message-id generator. Separate
// from any one System's ActorId counter, per spec.md's "no process-wide
// singleton" note for actor state — message ids are a pure stamp, not
// addressing state, so a single shared counter is fine.
var idCounter uint64

// NextID returns the next 64-bit monotonic message id.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Metadata carries the envelope fields of spec.md section 3.
type Metadata struct {
	ID            uint64
	TimestampNs   int64
	SenderID      int64
	HasSender     bool
	ReceiverID    int64
	HasReceiver   bool
	CorrelationID uuid.UUID
	HasCorrelation bool
	ReplyTo       Addressable
	HasReplyTo    bool
	TTL           time.Duration
	HasTTL        bool
	RetryCount    int
	MaxRetries    int
	Priority      Priority
	TraceID       uuid.UUID
	HasTrace      bool
}

// Addressable is the minimal interface a reply-to target must satisfy; it
// is implemented by actor.Ref without message importing actor (message sits
// below actor in the dependency order of spec.md section 2).
type Addressable interface {
	SendUser(payload Payload) error
}

// NewMetadata builds envelope metadata with sane defaults (max-retries=3,
// normal priority, a fresh trace id) per spec.md section 3.
func NewMetadata() Metadata {
	return Metadata{
		ID:          NextID(),
		TimestampNs: time.Now().UnixNano(),
		MaxRetries:  3,
		Priority:    PriorityNormal,
		TraceID:     uuid.New(),
		HasTrace:    true,
	}
}

// Expired reports whether the message's TTL (if any) has elapsed. This is a
// policy hook per spec.md section 5: the transport never enforces it, a
// consumer may consult it at receive time.
func (m Metadata) Expired(now time.Time) bool {
	if !m.HasTTL {
		return false
	}
	return now.UnixNano()-m.TimestampNs > int64(m.TTL)
}

// Message is the value sent through a Mailbox: a tag, metadata, and an
// opaque size-classed payload.
type Message struct {
	Tag        Tag
	SystemKind SystemKind
	Meta       Metadata
	Payload    Payload
}

// New constructs a user message with the given payload, picking whatever
// size class the payload already encodes (see NewPayload* constructors).
func New(payload Payload) *Message {
	return &Message{
		Tag:     TagUser,
		Meta:    NewMetadata(),
		Payload: payload,
	}
}

// NewSystem constructs a system message of the given kind, stamping the
// kind's fixed priority into the metadata.
func NewSystem(kind SystemKind) *Message {
	meta := NewMetadata()
	meta.Priority = kind.Priority()
	return &Message{
		Tag:        TagSystem,
		SystemKind: kind,
		Meta:       meta,
		Payload:    Payload{Class: ClassNone},
	}
}

// Release returns any pooled (medium-class) payload bytes to their pool;
// inline, borrowed and heap-owned payloads are left as they are. Safe to
// call multiple times; a released Message must not be
// reused without calling New/NewSystem again.
func (m *Message) Release() {
	if m == nil {
		return
	}
	ReleasePayload(&m.Payload)
}
