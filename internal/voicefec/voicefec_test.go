package voicefec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegenerateCountsBitErrors(t *testing.T) {
	r := NewRegenerator(Policy{Kind: DMRAMBE, SilenceThreshold: 100})
	frame := make([]byte, 27)
	corrected := make([]byte, 27)
	corrected[0] = 0x01 // single bit difference

	errs := r.Regenerate(frame, corrected)
	assert.Equal(t, 1, errs)
	assert.Equal(t, corrected, frame)
}

func TestRegenerateSubstitutesNullAudioPastThreshold(t *testing.T) {
	r := NewRegenerator(Policy{Kind: NXDNHalfRate, SilenceThreshold: 2})
	frame := make([]byte, 9)
	corrected := make([]byte, 9)
	corrected[0] = 0xFF // 8 bit errors, exceeds threshold of 2

	r.Regenerate(frame, corrected)
	assert.Equal(t, nullAudio[NXDNHalfRate], frame)
}

func TestResetClearsAccumulatedErrors(t *testing.T) {
	r := NewRegenerator(Policy{Kind: DMRAMBE, SilenceThreshold: 1})
	frame := make([]byte, 27)
	corrected := make([]byte, 27)
	corrected[0] = 0xFF
	r.Regenerate(frame, corrected)
	r.Reset()
	assert.Equal(t, 0, r.accumulatedErrs)
}
