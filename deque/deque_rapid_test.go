package deque

import (
	"testing"

	"pgregory.net/rapid"
)

// idTask carries an integer identity so a rapid model can check that every
// pop returns the most recently pushed id still queued, never a duplicate or
// a lost one.
type idTask struct{ id int }

func (t *idTask) Execute()     {}
func (t *idTask) Name() string { return "id" }

// TestDequeOwnerOnlySequenceIsLossless uses rapid to generate arbitrary
// interleavings of push/pop from a single owner goroutine (no concurrent
// stealing) and checks the deque behaves like a LIFO stack in that regime,
// per the Chase-Lev paper's single-owner invariant.
func TestDequeOwnerOnlySequenceIsLossless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := New(64)
		var stack []int
		nextID := 0

		ops := rapid.IntRange(0, 40).Draw(rt, "numOps")
		for i := 0; i < ops; i++ {
			if rapid.Bool().Draw(rt, "push") || len(stack) == 0 {
				id := nextID
				nextID++
				if d.PushBottom(&idTask{id: id}) {
					stack = append(stack, id)
				}
			} else {
				task, ok := d.PopBottom()
				if len(stack) == 0 {
					if ok {
						rt.Fatalf("popped from an empty model stack")
					}
					continue
				}
				want := stack[len(stack)-1]
				if !ok {
					rt.Fatalf("expected to pop %d, got empty", want)
				}
				got := task.(*idTask).id
				if got != want {
					rt.Fatalf("LIFO violated: want %d got %d", want, got)
				}
				stack = stack[:len(stack)-1]
			}
		}
	})
}
