package txqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFrameGetFrameRoundTrip(t *testing.T) {
	q := New(256, "test", nil)
	require.NoError(t, q.AddFrame(TagData, 0x20, []byte{1, 2, 3}, false))

	f, ok := q.GetFrame()
	require.True(t, ok)
	assert.Equal(t, TagData, f.Tag)
	assert.Equal(t, byte(0x20), f.RSSI)
	assert.Equal(t, []byte{1, 2, 3}, f.Payload)
	assert.True(t, q.IsEmpty())
}

func TestImmediateFrameJumpsQueue(t *testing.T) {
	q := New(256, "test", nil)
	require.NoError(t, q.AddFrame(TagData, 0, []byte{0xAA}, false))
	require.NoError(t, q.AddFrame(TagEOT, 0, []byte{0xBB}, true))

	f, ok := q.GetFrame()
	require.True(t, ok)
	assert.Equal(t, TagEOT, f.Tag)

	f2, ok := q.GetFrame()
	require.True(t, ok)
	assert.Equal(t, TagData, f2.Tag)
}

func TestOverflowClearsQueue(t *testing.T) {
	q := New(8, "test", nil)
	err := q.AddFrame(TagData, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8}, false)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, q.IsEmpty())
}

func TestGetFrameOnEmptyQueueReturnsFalse(t *testing.T) {
	q := New(64, "test", nil)
	_, ok := q.GetFrame()
	assert.False(t, ok)
}
