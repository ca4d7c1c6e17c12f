// Package bitio provides MSB-first bit-level access over byte slices, the
// shared DMR interleave table and NXDN scrambler sequence, and the
// big-endian scalar helpers used throughout the protocol codecs.
package bitio

// ReadBit returns the bit at bitIndex (0 = MSB of buf[0]) as a bool.
func ReadBit(buf []byte, bitIndex int) bool {
	byteIdx := bitIndex / 8
	mask := byte(0x80 >> uint(bitIndex%8))
	return buf[byteIdx]&mask != 0
}

// WriteBit sets the bit at bitIndex to value.
func WriteBit(buf []byte, bitIndex int, value bool) {
	byteIdx := bitIndex / 8
	mask := byte(0x80 >> uint(bitIndex%8))
	if value {
		buf[byteIdx] |= mask
	} else {
		buf[byteIdx] &^= mask
	}
}

// ByteToBitsBE unpacks a single byte into 8 MSB-first bools.
func ByteToBitsBE(b byte, bits []bool) {
	for i := 0; i < 8; i++ {
		bits[i] = b&(0x80>>uint(i)) != 0
	}
}

// BitsToByteBE packs 8 MSB-first bools into a single byte.
func BitsToByteBE(bits []bool) byte {
	var b byte
	for i := 0; i < 8 && i < len(bits); i++ {
		if bits[i] {
			b |= 0x80 >> uint(i)
		}
	}
	return b
}

// GetUint16BE reads a big-endian uint16 at the given byte offset.
func GetUint16BE(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

// SetUint16BE writes a big-endian uint16 at the given byte offset.
func SetUint16BE(val uint16, buf []byte, off int) {
	buf[off] = byte(val >> 8)
	buf[off+1] = byte(val)
}

// GetUint32BE reads a big-endian uint32 at the given byte offset.
func GetUint32BE(buf []byte, off int) uint32 {
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
}

// SetUint32BE writes a big-endian uint32 at the given byte offset.
func SetUint32BE(val uint32, buf []byte, off int) {
	buf[off] = byte(val >> 24)
	buf[off+1] = byte(val >> 16)
	buf[off+2] = byte(val >> 8)
	buf[off+3] = byte(val)
}

// GetUint24BE reads a 24-bit big-endian unsigned value (RID/TG width).
func GetUint24BE(buf []byte, off int) uint32 {
	return uint32(buf[off])<<16 | uint32(buf[off+1])<<8 | uint32(buf[off+2])
}

// SetUint24BE writes a 24-bit big-endian unsigned value.
func SetUint24BE(val uint32, buf []byte, off int) {
	buf[off] = byte(val >> 16)
	buf[off+1] = byte(val >> 8)
	buf[off+2] = byte(val)
}

// DMRInterleave is the 98-entry dibit-interleave table used by DMR's
// rate-3/4 Trellis framing (mirrors P25's INTERLEAVE_TABLE, which DMR
// also uses for its payload Trellis since both derive from the same
// MMDVM lineage).
var DMRInterleave = [98]uint32{
	0, 1, 8, 9, 16, 17, 24, 25, 32, 33, 40, 41, 48, 49, 56, 57, 64, 65, 72, 73, 80, 81, 88, 89, 96, 97,
	2, 3, 10, 11, 18, 19, 26, 27, 34, 35, 42, 43, 50, 51, 58, 59, 66, 67, 74, 75, 82, 83, 90, 91,
	4, 5, 12, 13, 20, 21, 28, 29, 36, 37, 44, 45, 52, 53, 60, 61, 68, 69, 76, 77, 84, 85, 92, 93,
	6, 7, 14, 15, 22, 23, 30, 31, 38, 39, 46, 47, 54, 55, 62, 63, 70, 71, 78, 79, 86, 87, 94, 95,
}

// NXDNScrambler is the 128-bit (16-byte) NXDN CAC/SACCH scrambler sequence,
// XORed into the channel bits before FEC framing and after deframing.
var NXDNScrambler = [16]byte{
	0x5A, 0x95, 0x6A, 0xD5, 0x4A, 0xB5, 0x3A, 0xC5,
	0x2A, 0xD5, 0x1A, 0xE5, 0x0A, 0xF5, 0xFA, 0x05,
}

// Scramble XORs src with the repeating NXDN scrambler sequence into dst.
// len(dst) must equal len(src).
func Scramble(dst, src []byte) {
	for i := range src {
		dst[i] = src[i] ^ NXDNScrambler[i%len(NXDNScrambler)]
	}
}
