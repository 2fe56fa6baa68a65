// Command greenroom is a minimal embedding application demonstrating the
// runtime end to end, mirroring the teacher's main.go: build a config,
// start a system, spawn a counter, ask it for its total, then shut down
// gracefully on SIGINT/SIGTERM or after half a second, whichever comes
// first.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lguibr/greenroom/ask"
	"github.com/lguibr/greenroom/config"
	"github.com/lguibr/greenroom/examples"
	"github.com/lguibr/greenroom/system"
)

func main() {
	cfg := config.Default()
	cfg.Verbose = true

	sys, err := system.New("greenroom-demo", cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "greenroom: start system: %v\n", err)
		os.Exit(1)
	}

	counter, err := sys.Spawn(examples.NewCounterProducer(), "counter")
	if err != nil {
		fmt.Fprintf(os.Stderr, "greenroom: spawn counter: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < 1000; i++ {
		if err := counter.Send(examples.IncPayload(), nil); err != nil {
			fmt.Fprintf(os.Stderr, "greenroom: send: %v\n", err)
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if reply, err := ask.Ask(ctx, sys, counter, examples.GetPayload(), time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "greenroom: ask: %v\n", err)
	} else {
		fmt.Printf("greenroom: counter total = %d\n", binary.LittleEndian.Uint32(reply.Bytes()))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-time.After(500 * time.Millisecond):
	}

	sys.Shutdown()
}
