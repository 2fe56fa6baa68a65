package deque

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	n *int64
}

func (c *countingTask) Execute()     { atomic.AddInt64(c.n, 1) }
func (c *countingTask) Name() string { return "counting" }

func TestPushPopOwnerOnly(t *testing.T) {
	d := New(8)
	var n int64
	for i := 0; i < 4; i++ {
		require.True(t, d.PushBottom(&countingTask{n: &n}))
	}
	assert.Equal(t, 4, d.Len())
	for i := 0; i < 4; i++ {
		task, ok := d.PopBottom()
		require.True(t, ok)
		task.Execute()
	}
	assert.Equal(t, int64(4), n)
	_, ok := d.PopBottom()
	assert.False(t, ok)
}

func TestPushBottomRejectsAtCapacity(t *testing.T) {
	d := New(2) // rounds to 2
	var n int64
	require.True(t, d.PushBottom(&countingTask{n: &n}))
	require.True(t, d.PushBottom(&countingTask{n: &n}))
	assert.False(t, d.PushBottom(&countingTask{n: &n}))
}

func TestStealDoesNotDuplicateWork(t *testing.T) {
	d := New(256)
	var n int64
	const total = 200
	for i := 0; i < total; i++ {
		require.True(t, d.PushBottom(&countingTask{n: &n}))
	}

	var executed int64
	var wg sync.WaitGroup
	drain := func(pop func() (Task, bool)) {
		defer wg.Done()
		for {
			task, ok := pop()
			if !ok {
				return
			}
			task.Execute()
			atomic.AddInt64(&executed, 1)
		}
	}

	wg.Add(4)
	for i := 0; i < 3; i++ {
		go drain(d.Steal)
	}
	go drain(d.PopBottom)
	wg.Wait()

	assert.Equal(t, int64(total), atomic.LoadInt64(&n))
	assert.Equal(t, int64(total), atomic.LoadInt64(&executed))
}
