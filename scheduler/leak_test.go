package scheduler

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/lguibr/greenroom/config"
)

// TestStartStopLeavesNoGoroutines guards the worker pool's shutdown path:
// every worker goroutine launched by Start must have exited by the time
// Stop returns, per spec.md section 4.3's "cooperative stop" contract.
func TestStartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.ForTests()
	s := New(cfg)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(nil); err != nil {
		t.Fatal(err)
	}
}
