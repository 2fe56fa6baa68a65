package system

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/greenroom/actor"
	"github.com/lguibr/greenroom/ask"
	"github.com/lguibr/greenroom/config"
	"github.com/lguibr/greenroom/examples"
)

func TestSpawnSendAndAsk(t *testing.T) {
	sys, err := New("test", config.ForTests())
	require.NoError(t, err)
	defer sys.Shutdown()

	ref, err := sys.Spawn(examples.NewCounterProducer(), "counter")
	require.NoError(t, err)

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, ref.Send(examples.IncPayload(), nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	reply, err := ask.Ask(ctx, sys, ref, examples.GetPayload(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(n), binary.LittleEndian.Uint32(reply.Bytes()))
}

func TestSpawnDuplicatePathFails(t *testing.T) {
	sys, err := New("test-dup", config.ForTests())
	require.NoError(t, err)
	defer sys.Shutdown()

	_, err = sys.Spawn(examples.NewCounterProducer(), "dup")
	require.NoError(t, err)
	_, err = sys.Spawn(examples.NewCounterProducer(), "dup")
	assert.Error(t, err)
}

func TestFindResolvesExactPath(t *testing.T) {
	sys, err := New("test-find", config.ForTests())
	require.NoError(t, err)
	defer sys.Shutdown()

	ref, err := sys.Spawn(examples.NewCounterProducer(), "findme")
	require.NoError(t, err)

	found, ok := sys.Find(ref.Path())
	require.True(t, ok)
	assert.True(t, found.Equal(ref))

	_, ok = sys.Find(actor.Path("/user/does-not-exist"))
	assert.False(t, ok)
}

func TestPingPongConverges(t *testing.T) {
	sys, err := New("test-pingpong", config.ForTests())
	require.NoError(t, err)
	defer sys.Shutdown()

	const rounds = 100
	doneCh := make(chan struct{}, 1)
	supervisor, err := sys.Spawn(examples.NewSupervisorProducer(doneCh), "supervisor")
	require.NoError(t, err)

	var pRef, qRef actor.Ref
	p, err := sys.Spawn(examples.NewPingPongProducer(&qRef, supervisor, rounds), "ping-p")
	require.NoError(t, err)
	q, err := sys.Spawn(examples.NewPingPongProducer(&pRef, actor.Ref{}, rounds), "ping-q")
	require.NoError(t, err)
	pRef, qRef = p, q

	require.NoError(t, p.Send(examples.StartPayload(), nil))

	select {
	case <-doneCh:
	case <-time.After(3 * time.Second):
		t.Fatal("ping-pong did not converge in time")
	}
}
