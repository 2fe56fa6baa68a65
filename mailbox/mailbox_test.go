package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/greenroom/message"
)

func allVariants() []Variant { return []Variant{Standard, Fast, Ultra} }

func TestSendReceiveFIFOPerSender(t *testing.T) {
	for _, v := range allVariants() {
		mb := New(v, 16)
		for i := 0; i < 8; i++ {
			require.NoError(t, mb.Send(message.New(message.NewSmallInt(int64(i)))), "variant=%d", v)
		}
		for i := 0; i < 8; i++ {
			msg, err := mb.Receive()
			require.NoError(t, err, "variant=%d", v)
			if v != Ultra { // sharded mailbox only preserves per-shard order
				assert.Equal(t, int64(i), msg.Payload.Int(), "variant=%d idx=%d", v, i)
			}
		}
	}
}

func TestReceiveOnEmptyReturnsErrEmpty(t *testing.T) {
	for _, v := range allVariants() {
		mb := New(v, 8)
		_, err := mb.Receive()
		assert.ErrorIs(t, err, ErrEmpty, "variant=%d", v)
	}
}

func TestSendAtCapacityReturnsErrFull(t *testing.T) {
	mb := New(Standard, 2)
	require.NoError(t, mb.Send(message.New(message.NewSmallInt(1))))
	require.NoError(t, mb.Send(message.New(message.NewSmallInt(2))))
	err := mb.Send(message.New(message.NewSmallInt(3)))
	assert.ErrorIs(t, err, ErrFull)
}

func TestClearDrainsEverything(t *testing.T) {
	mb := New(Fast, 8)
	for i := 0; i < 4; i++ {
		require.NoError(t, mb.Send(message.New(message.NewSmallInt(int64(i)))))
	}
	mb.Clear()
	_, err := mb.Receive()
	assert.ErrorIs(t, err, ErrEmpty)
}
