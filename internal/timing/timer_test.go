package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerExpiresAfterTimeout(t *testing.T) {
	tm := New(1000, 1, 0) // 1 second at millisecond ticks
	tm.Start(0, 0)
	assert.False(t, tm.HasExpired())
	tm.Clock(999)
	assert.False(t, tm.HasExpired())
	tm.Clock(2)
	assert.True(t, tm.HasExpired())
}

func TestTimerPauseFreezesCountdown(t *testing.T) {
	tm := New(1000, 1, 0)
	tm.Start(0, 0)
	tm.Clock(500)
	tm.Pause()
	tm.Clock(1000)
	assert.False(t, tm.HasExpired())
	tm.Resume()
	tm.Clock(600)
	assert.True(t, tm.HasExpired())
}

func TestTimerNeverStartedNeverExpires(t *testing.T) {
	tm := New(1000, 1, 0)
	assert.False(t, tm.HasExpired())
}
