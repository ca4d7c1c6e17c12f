package fec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCRC5RoundTrip(t *testing.T) {
	bits := make([]bool, 72)
	for i := range bits {
		bits[i] = i%3 == 0
	}
	crc := EncodeCRC5(bits)
	assert.True(t, CheckCRC5(bits, crc))
	assert.False(t, CheckCRC5(bits, crc+1))
}

func TestCCITT162RoundTrip(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x00, 0x00}
	AddCCITT162(buf, len(buf))
	assert.True(t, CheckCCITT162(buf, len(buf)))
	buf[0] ^= 0xFF
	assert.False(t, CheckCCITT162(buf, len(buf)))
}

func TestCCITT161RoundTrip(t *testing.T) {
	buf := []byte{0x11, 0x22, 0x33, 0x00, 0x00}
	AddCCITT161(buf, len(buf))
	assert.True(t, CheckCCITT161(buf, len(buf)))
}

func TestCRC32RoundTrip(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}
	AddCRC32(buf, len(buf))
	assert.True(t, CheckCRC32(buf, len(buf)))
}

func TestHamming15113V1CorrectsSingleBitError(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := make([]bool, 11)
		for i := range data {
			data[i] = rapid.Bool().Draw(rt, "bit")
		}
		code := EncodeHamming15113V1(data)
		flip := rapid.IntRange(0, 14).Draw(rt, "flip")
		corrupted := make([]bool, len(code))
		copy(corrupted, code)
		corrupted[flip] = !corrupted[flip]

		decoded, err := DecodeHamming15113V1(corrupted)
		require.NoError(rt, err)
		assert.Equal(rt, data, decoded)
	})
}

func TestHamming15113V2CorrectsSingleBitError(t *testing.T) {
	data := []bool{true, false, true, true, false, false, true, false, true, false, true}
	code := EncodeHamming15113V2(data)
	code[3] = !code[3]
	decoded, err := DecodeHamming15113V2(code)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestHamming1393CorrectsSingleBitError(t *testing.T) {
	data := []bool{true, false, false, true, true, false, true, false, true}
	code := EncodeHamming1393(data)
	code[7] = !code[7]
	decoded, err := DecodeHamming1393(code)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestGolay24128RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.Uint32Range(0, (1<<12)-1).Draw(rt, "data")
		code := EncodeGolay24128(data)
		nbits := rapid.IntRange(0, 2).Draw(rt, "errbits")
		corrupted := code
		for i := 0; i < nbits; i++ {
			pos := rapid.IntRange(0, 23).Draw(rt, "pos")
			corrupted ^= 1 << uint(pos)
		}
		decoded, err := DecodeGolay24128(corrupted)
		require.NoError(rt, err)
		assert.Equal(rt, data, decoded)
	})
}

func TestGolay2087RoundTrip(t *testing.T) {
	data := uint32(0xA5)
	code := EncodeGolay2087(data)
	decoded, err := DecodeGolay2087(code)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestBCH1511CorrectsSingleBitError(t *testing.T) {
	data := uint32(0x3AB)
	code := EncodeBCH1511(data)
	code ^= 1 << 5
	decoded, err := DecodeBCH1511(code)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestQR1676CorrectsTwoBitErrors(t *testing.T) {
	data := uint32(0x55)
	code := EncodeQR1676(data)
	code ^= (1 << 2) | (1 << 9)
	decoded, err := DecodeQR1676(code)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestTrellis34RoundTripNoErrors(t *testing.T) {
	payload := make([]bool, 144)
	for i := range payload {
		payload[i] = i%5 == 0
	}
	burst := EncodeTrellis34(payload)
	assert.Len(t, burst, 196)
	decoded, err := DecodeTrellis34(burst)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestTrellis12RoundTripNoErrors(t *testing.T) {
	payload := make([]bool, 96)
	for i := range payload {
		payload[i] = i%7 == 0
	}
	burst := EncodeTrellis12(payload)
	decoded, err := DecodeTrellis12(burst)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestBPTC19696RoundTripWithErrors(t *testing.T) {
	data := make([]bool, 96)
	for i := range data {
		data[i] = i%4 == 0
	}
	burst := EncodeBPTC19696(data)
	assert.Len(t, burst, 196)

	corrupted := make([]bool, len(burst))
	copy(corrupted, burst)
	corrupted[10] = !corrupted[10]
	corrupted[45] = !corrupted[45]

	decoded, err := DecodeBPTC19696(corrupted)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestRS241213RoundTripWithErrors(t *testing.T) {
	data := make([]int, 12)
	for i := range data {
		data[i] = (i * 5) % 64
	}
	code := EncodeRS241213(data)
	assert.Len(t, code, 24)

	corrupted := make([]int, len(code))
	copy(corrupted, code)
	corrupted[2] ^= 0x1F
	corrupted[20] ^= 0x3

	decoded, err := DecodeRS241213(corrupted)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestRS24169RoundTripWithErrors(t *testing.T) {
	data := make([]int, 16)
	for i := range data {
		data[i] = (i*3 + 1) % 64
	}
	code := EncodeRS24169(data)

	corrupted := make([]int, len(code))
	copy(corrupted, code)
	corrupted[0] ^= 0x2A

	decoded, err := DecodeRS24169(corrupted)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestRS362017RoundTripWithErrors(t *testing.T) {
	data := make([]int, 20)
	for i := range data {
		data[i] = (i*7 + 2) % 64
	}
	code := EncodeRS362017(data)

	corrupted := make([]int, len(code))
	copy(corrupted, code)
	corrupted[5] ^= 0x11
	corrupted[30] ^= 0x07

	decoded, err := DecodeRS362017(corrupted)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestAsDecodeError(t *testing.T) {
	assert.Equal(t, Irrecoverable, AsDecodeError(ErrIrrecoverable))
	assert.Equal(t, Crc, AsDecodeError(ErrCRC))
	assert.Equal(t, Irrecoverable, AsDecodeError(nil))
}
