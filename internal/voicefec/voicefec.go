// Package voicefec wraps the fixed-layout voice vocoder frames (DMR AMBE,
// P25 IMBE, NXDN half/full-rate) with a bit-error-counting regenerate
// pass and a silence-threshold null-audio replacement policy, grounded on
// the teacher's internal/codec/{ambe_validator.go,dmr_ambe.go,ysf_ambe.go}
// error-counting/threshold pattern.
package voicefec

import "log/slog"

// FrameKind identifies which protocol's voice frame layout a Codec
// operates on.
type FrameKind int

const (
	DMRAMBE FrameKind = iota
	P25IMBE
	NXDNHalfRate
	NXDNFullRate
)

// frameSize is the fixed byte length of one voice frame per kind.
var frameSize = map[FrameKind]int{
	DMRAMBE:      27,
	P25IMBE:      99, // 11 bytes x 9 IMBE blocks
	NXDNHalfRate: 9,
	NXDNFullRate: 18,
}

// nullAudio is the protocol-appropriate null-audio pattern substituted
// when a frame's corrected-error count exceeds its silence threshold.
var nullAudio = map[FrameKind][]byte{
	DMRAMBE:      {0xB9, 0xE8, 0x81, 0x52, 0x61, 0x73, 0x00, 0x2A, 0x6B, 0xB9, 0xE8, 0x81, 0x52, 0x61, 0x73, 0x00, 0x2A, 0x6B, 0xB9, 0xE8, 0x81, 0x52, 0x61, 0x73, 0x00, 0x2A, 0x6B},
	P25IMBE:      nil, // filled in init from the repeating 11-byte IMBE silence block
	NXDNHalfRate: {0x5E, 0x8D, 0x16, 0xAA, 0xCD, 0xD5, 0xE6, 0x08, 0x40},
	NXDNFullRate: nil, // filled in init from the repeating 9-byte half-rate block
}

const imbeSilenceBlock = "\x04\x0C\xFD\x7B\xFB\x7D\xF2\x7B\x3D\x9E\x45"

func init() {
	imbe := make([]byte, 0, 99)
	for i := 0; i < 9; i++ {
		imbe = append(imbe, []byte(imbeSilenceBlock)...)
	}
	nullAudio[P25IMBE] = imbe

	nxdnFull := make([]byte, 0, 18)
	for i := 0; i < 2; i++ {
		nxdnFull = append(nxdnFull, nullAudio[NXDNHalfRate]...)
	}
	nullAudio[NXDNFullRate] = nxdnFull
}

// Policy configures how many regenerated errors a call tolerates before a
// frame is replaced with silence.
type Policy struct {
	Kind             FrameKind
	SilenceThreshold int // total errors allowed until Reset; zero means 14 for DMR, stays zero for other kinds
	Logger           *slog.Logger
}

// Regenerator tracks accumulated corrected-error counts for one active
// call and applies the silence-replacement policy.
type Regenerator struct {
	policy          Policy
	accumulatedErrs int
	framesSeen      int
}

// NewRegenerator creates a voice regenerator for one call under policy.
func NewRegenerator(policy Policy) *Regenerator {
	if policy.Logger == nil {
		policy.Logger = slog.Default()
	}
	if policy.SilenceThreshold == 0 && policy.Kind == DMRAMBE {
		policy.SilenceThreshold = 14
	}
	return &Regenerator{policy: policy}
}

// Regenerate counts the bit difference between raw (as received) and
// corrected (after FEC correction) to estimate errors_corrected, updates
// the call's running total, and replaces frame's contents with null
// audio in place once the running total exceeds the configured
// threshold. Returns the number of bits corrected this frame.
func (r *Regenerator) Regenerate(frame []byte, corrected []byte) int {
	size := frameSize[r.policy.Kind]
	if len(frame) != size || len(corrected) != size {
		r.policy.Logger.Warn("voicefec: frame size mismatch", "kind", r.policy.Kind, "got", len(frame), "want", size)
		return 0
	}

	errs := 0
	for i := 0; i < size; i++ {
		diff := frame[i] ^ corrected[i]
		for diff != 0 {
			errs++
			diff &= diff - 1
		}
	}
	copy(frame, corrected)

	r.accumulatedErrs += errs
	r.framesSeen++

	if r.accumulatedErrs > r.policy.SilenceThreshold {
		copy(frame, nullAudio[r.policy.Kind])
		r.policy.Logger.Info("voicefec: silence threshold exceeded, substituting null audio",
			"kind", r.policy.Kind, "accumulated_errors", r.accumulatedErrs, "frames", r.framesSeen)
	}
	return errs
}

// Reset clears accumulated error state, called at the start of each new
// call.
func (r *Regenerator) Reset() {
	r.accumulatedErrs = 0
	r.framesSeen = 0
}
