package fnenet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rtp := RTPHeader{Version: 2, PayloadType: 0x62, Sequence: 42, Timestamp: NowTimestamp(1_000_000), SSRC: 0xABCD1234}
	fneHdr := FNEHeader{Func: 0x05, SubFunc: 0x01, StreamID: NewStreamID(), PeerID: 99}
	message := []byte{0x10, 0x20, 0x30, 0x40}

	buf := Encode(rtp, fneHdr, message)
	dg, err := Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, rtp.Sequence, dg.RTP.Sequence)
	assert.Equal(t, rtp.SSRC, dg.RTP.SSRC)
	assert.Equal(t, fneHdr.Func, dg.FNE.Func)
	assert.Equal(t, fneHdr.PeerID, dg.FNE.PeerID)
	assert.Equal(t, uint32(len(message)), dg.FNE.MessageLength)
	assert.Equal(t, message, dg.Message)
}

func TestDecodeRejectsBadPayloadType(t *testing.T) {
	buf := Encode(RTPHeader{}, FNEHeader{}, []byte{1})
	buf[12] = 0x00
	buf[13] = 0x00

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrBadPayloadType)
}

func TestDecodeRejectsCorruptedCRC(t *testing.T) {
	buf := Encode(RTPHeader{}, FNEHeader{}, []byte{1, 2, 3})
	buf[len(buf)-1] ^= 0xFF

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrBadCRC)
}

func TestDecodeRejectsTooShort(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTooShort)
}
