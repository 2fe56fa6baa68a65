package message

// Class identifies one of the five payload size classes of spec.md section
// 4.2: tiny (<=8B inline), small (<=64B inline), medium (<=1KB pooled),
// large (<=64KB heap), huge (>64KB heap, flagged).
type Class uint8

const (
	ClassNone Class = iota
	ClassTiny
	ClassSmall
	ClassMedium
	ClassLarge
	ClassHuge
)

const (
	tinyMax   = 8
	smallMax  = 64
	mediumMax = 1024
	largeMax  = 64 * 1024
)

// ClassFor returns the smallest size class that fits n bytes, per the
// "create picks the smallest class that fits" rule of spec.md section 4.2.
func ClassFor(n int) Class {
	switch {
	case n <= tinyMax:
		return ClassTiny
	case n <= smallMax:
		return ClassSmall
	case n <= mediumMax:
		return ClassMedium
	case n <= largeMax:
		return ClassLarge
	default:
		return ClassHuge
	}
}

// Payload is the opaque message value. Exactly one of the variants below is
// populated, selected by Kind. The owning-vs-borrowing distinction is load
// bearing per spec.md section 3: Borrowed never allocates or frees, Owned
// (and pooled Medium) must be released exactly once.
type Payload struct {
	Class Class
	Kind  Kind

	tiny      [tinyMax]byte
	tinyLen   uint8
	small     [smallMax]byte
	smallLen  uint8
	medium    *mediumSlot // pooled, returned to its thread's free-list on Release
	large     []byte      // heap-owned
	borrowed  []byte      // non-owning, caller-owned static lifetime
	smallInt  int64
	smallFlt  float64
	boolean   bool
}

// Kind distinguishes the payload's logical type, independent of its size
// class (a json-bytes payload may be tiny, small, medium, or large
// depending on its length).
type Kind uint8

const (
	KindNone Kind = iota
	KindBorrowedBytes
	KindOwnedBytes
	KindSmallInt
	KindSmallFloat
	KindBool
	KindJSON
	KindBinary
)

// NewBorrowed wraps a caller-owned, non-owning byte slice. The runtime never
// copies or frees it; the caller must keep it alive for the message's
// lifetime (typically a package-level constant or a buffer the caller pins).
func NewBorrowed(b []byte) Payload {
	return Payload{Class: ClassFor(len(b)), Kind: KindBorrowedBytes, borrowed: b}
}

// NewOwnedBytes copies b into the appropriate size class, taking ownership.
// Medium-sized payloads are served from the calling goroutine's arena;
// large and huge payloads are heap-allocated.
func NewOwnedBytes(b []byte) Payload {
	return newBytesPayload(b, KindOwnedBytes)
}

// NewJSON behaves like NewOwnedBytes but tags the payload as JSON.
func NewJSON(b []byte) Payload {
	return newBytesPayload(b, KindJSON)
}

// NewBinary behaves like NewOwnedBytes but tags the payload as opaque
// binary.
func NewBinary(b []byte) Payload {
	return newBytesPayload(b, KindBinary)
}

func newBytesPayload(b []byte, kind Kind) Payload {
	class := ClassFor(len(b))
	p := Payload{Class: class, Kind: kind}
	switch class {
	case ClassTiny:
		p.tinyLen = uint8(copy(p.tiny[:], b))
	case ClassSmall:
		p.smallLen = uint8(copy(p.small[:], b))
	case ClassMedium:
		slot := acquireMediumSlot()
		n := copy(slot.buf[:], b)
		slot.len = n
		p.medium = slot
	default: // large, huge
		owned := make([]byte, len(b))
		copy(owned, b)
		p.large = owned
	}
	return p
}

// NewSmallInt wraps a small integer inline (tiny class).
func NewSmallInt(v int64) Payload {
	return Payload{Class: ClassTiny, Kind: KindSmallInt, smallInt: v}
}

// NewSmallFloat wraps a small float inline (tiny class).
func NewSmallFloat(v float64) Payload {
	return Payload{Class: ClassTiny, Kind: KindSmallFloat, smallFlt: v}
}

// NewBool wraps a boolean inline (tiny class).
func NewBool(v bool) Payload {
	return Payload{Class: ClassTiny, Kind: KindBool, boolean: v}
}

// Bytes returns the payload's byte view regardless of which class backs it.
// For borrowed payloads this returns the caller's original slice (do not
// retain past the handler invocation that receives it); for everything
// else it returns a view into runtime-owned storage that becomes invalid
// after Release.
func (p *Payload) Bytes() []byte {
	if p.Kind == KindBorrowedBytes {
		return p.borrowed
	}
	switch p.Class {
	case ClassTiny:
		return p.tiny[:p.tinyLen]
	case ClassSmall:
		return p.small[:p.smallLen]
	case ClassMedium:
		if p.medium == nil {
			return nil
		}
		return p.medium.buf[:p.medium.len]
	case ClassLarge, ClassHuge:
		return p.large
	default:
		return nil
	}
}

// Int returns the inline small-integer value.
func (p *Payload) Int() int64 { return p.smallInt }

// Float returns the inline small-float value.
func (p *Payload) Float() float64 { return p.smallFlt }

// Bool returns the inline boolean value.
func (p *Payload) Bool() bool { return p.boolean }

// ReleasePayload returns pooled storage to its pool. Inline payloads
// (tiny/small/scalar) and borrowed slices need no action; owned large/huge
// slices are left for the GC; medium slices are pushed back onto their
// class's per-thread free-list.
func ReleasePayload(p *Payload) {
	if p == nil || p.Class != ClassMedium || p.medium == nil {
		return
	}
	releaseMediumSlot(p.medium)
	p.medium = nil
}
