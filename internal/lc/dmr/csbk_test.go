package dmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/lc"
)

func TestTVGrantRoundTrip(t *testing.T) {
	g := &TVGrant{
		baseFields:     baseFields{LastBlock: true, FeatureID: FeatureID},
		LogicalChannel: 3,
		SlotNumber:     1,
		DstID:          12345,
		SrcID:          6789,
	}
	raw := g.Encode()
	require.Len(t, raw, 12)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	tv, ok := decoded.(*TVGrant)
	require.True(t, ok)
	assert.Equal(t, uint32(12345), tv.DstID)
	assert.Equal(t, uint32(6789), tv.SrcID)
	assert.Equal(t, byte(3), tv.LogicalChannel)
	assert.Equal(t, byte(1), tv.SlotNumber)
}

func TestDecodeRejectsBadCRC(t *testing.T) {
	g := &TVGrant{DstID: 1, SrcID: 2}
	raw := g.Encode()
	raw[5] ^= 0xFF

	_, err := Decode(raw)
	assert.Error(t, err)
}

func TestDecodeUnknownOpcodeIsRaw(t *testing.T) {
	p := &PClear{baseFields: baseFields{FeatureID: FeatureID}}
	raw := p.Encode()
	raw[0] = (raw[0] &^ 0x3F) | 0x3E // opcode 0x3E has no typed variant

	decoded, err := Decode(raw)
	require.NoError(t, err)
	_, ok := decoded.(*lc.RawOpcode)
	assert.True(t, ok)
}
