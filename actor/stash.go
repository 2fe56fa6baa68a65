package actor

import (
	"github.com/gammazero/deque"

	"github.com/lguibr/greenroom/message"
)

// Stash is the per-actor stash list of spec.md section 4.4, used for
// becoming state-machines: stash(m) defers m, unstash-all re-sends every
// stashed message to self in original order. It is exclusively owned by
// the actor's own goroutine-serialized Receive, so a plain (not
// lock-free) ring-backed deque is the right tool — gammazero/deque is the
// library the retrieved pack already reaches for in this exact role
// (markInTheAbyss-go-actor's mailbox).
type Stash struct {
	q deque.Deque[*message.Message]
}

// Push appends msg to the stash.
func (s *Stash) Push(msg *message.Message) {
	s.q.PushBack(msg)
}

// Len reports the number of stashed messages.
func (s *Stash) Len() int {
	return s.q.Len()
}

// Drain removes and returns every stashed message in original order,
// leaving the stash empty.
func (s *Stash) Drain() []*message.Message {
	n := s.q.Len()
	if n == 0 {
		return nil
	}
	out := make([]*message.Message, 0, n)
	for s.q.Len() > 0 {
		out = append(out, s.q.PopFront())
	}
	return out
}

// Clear releases every stashed message's payload and empties the stash,
// used when a restart discards stashed work per spec.md's documented
// "clears the mailbox on restart" behavior (Open Question, resolved in
// DESIGN.md).
func (s *Stash) Clear() {
	for s.q.Len() > 0 {
		msg := s.q.PopFront()
		msg.Release()
	}
}
