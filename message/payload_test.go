package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassFor(t *testing.T) {
	cases := []struct {
		n        int
		expected Class
	}{
		{0, ClassTiny},
		{8, ClassTiny},
		{9, ClassSmall},
		{64, ClassSmall},
		{65, ClassMedium},
		{1024, ClassMedium},
		{1025, ClassLarge},
		{64 * 1024, ClassLarge},
		{64*1024 + 1, ClassHuge},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, ClassFor(c.n), "n=%d", c.n)
	}
}

func TestNewOwnedBytesRoundTrip(t *testing.T) {
	tiny := NewOwnedBytes([]byte("hi"))
	assert.Equal(t, ClassTiny, tiny.Class)
	assert.Equal(t, "hi", string(tiny.Bytes()))

	big := strings.Repeat("x", 2000)
	large := NewOwnedBytes([]byte(big))
	assert.Equal(t, ClassLarge, large.Class)
	assert.Equal(t, big, string(large.Bytes()))
}

func TestMediumPayloadUsesPool(t *testing.T) {
	before, _ := MediumPoolStats()
	p := NewOwnedBytes(make([]byte, 512))
	require.Equal(t, ClassMedium, p.Class)
	assert.Equal(t, 512, len(p.Bytes()))
	ReleasePayload(&p)
	after, _ := MediumPoolStats()
	assert.GreaterOrEqual(t, after, before)
}

func TestBorrowedNeverCopies(t *testing.T) {
	b := []byte("borrowed")
	p := NewBorrowed(b)
	b[0] = 'B'
	assert.Equal(t, "Borrowed", string(p.Bytes()))
}

func TestScalarPayloads(t *testing.T) {
	assert.Equal(t, int64(42), NewSmallInt(42).Int())
	assert.Equal(t, 3.5, NewSmallFloat(3.5).Float())
	assert.True(t, NewBool(true).Bool())
}
