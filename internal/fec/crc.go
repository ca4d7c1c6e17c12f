package fec

import (
	"hash/crc32"

	"github.com/dvmgo/trunkcore/internal/bitio"
)

// bitCRC computes a non-reflected polynomial division over a bit-length
// input, the general mechanism behind every short CRC in the protocol
// family (DMR's 5-bit SLCO, P25's 6/9/12/15-bit short-LC checks). dataBits
// holds only the protected payload; checkWidth zero bits are conceptually
// appended before the division runs, and the checkWidth-bit remainder is
// returned MSB-first.
func bitCRC(dataBits []bool, poly uint32, checkWidth int) uint32 {
	reg := uint32(0)
	topBit := uint32(1) << uint(checkWidth-1)

	push := func(bit bool) {
		in := uint32(0)
		if bit {
			in = 1
		}
		msbSet := reg&topBit != 0
		reg = ((reg << 1) | in) & ((uint32(1) << uint(checkWidth)) - 1)
		if msbSet {
			reg ^= poly
		}
	}

	for _, b := range dataBits {
		push(b)
	}
	for i := 0; i < checkWidth; i++ {
		push(false)
	}
	return reg
}

func bytesToBits(in []byte, bitLength int) []bool {
	bits := make([]bool, bitLength)
	for i := 0; i < bitLength; i++ {
		bits[i] = bitio.ReadBit(in, i)
	}
	return bits
}

// CRC5 polynomial for DMR's short-link-control CRC, per the MMDVM-derived
// CRC::encodeFiveBit/checkFiveBit contract.
const crc5Poly = 0x15

// EncodeCRC5 computes the 5-bit CRC over the given bits (typically the
// 72-bit DMR Short LC payload) and returns it MSB-first.
func EncodeCRC5(in []bool) uint8 {
	return uint8(bitCRC(in, crc5Poly, 5))
}

// CheckCRC5 verifies a 5-bit CRC against the expected value.
func CheckCRC5(in []bool, want uint8) bool {
	return EncodeCRC5(in) == want
}

const (
	crc6Poly  = 0x27
	crc9Poly  = 0x059
	crc12Poly = 0x80F
	crc15Poly = 0x4CC5
)

// AddCRC6 computes P25's 6-bit short-LC CRC over the first bitLength-6 bits
// of in and writes it into the low 6 bits of the trailing check field,
// returning the check value.
func AddCRC6(in []byte, bitLength int) uint8 {
	dataBits := bitLength - 6
	crc := uint8(bitCRC(bytesToBits(in, dataBits), crc6Poly, 6))
	writeCheckBits(in, dataBits, 6, uint32(crc))
	return crc
}

// CheckCRC6 verifies the trailing 6-bit CRC.
func CheckCRC6(in []byte, bitLength int) bool {
	dataBits := bitLength - 6
	want := readCheckBits(in, dataBits, 6)
	return uint32(bitCRC(bytesToBits(in, dataBits), crc6Poly, 6)) == want
}

// AddCRC9 computes the 9-bit CRC variant used by P25 short LC fields.
func AddCRC9(in []byte, bitLength int) uint16 {
	dataBits := bitLength - 9
	crc := uint16(bitCRC(bytesToBits(in, dataBits), crc9Poly, 9))
	writeCheckBits(in, dataBits, 9, uint32(crc))
	return crc
}

// CheckCRC9 verifies the trailing 9-bit CRC.
func CheckCRC9(in []byte, bitLength int) bool {
	dataBits := bitLength - 9
	want := readCheckBits(in, dataBits, 9)
	return uint32(bitCRC(bytesToBits(in, dataBits), crc9Poly, 9)) == want
}

// AddCRC12 computes the 12-bit CRC variant (P25 TSBK-adjacent short fields).
func AddCRC12(in []byte, bitLength int) uint16 {
	dataBits := bitLength - 12
	crc := uint16(bitCRC(bytesToBits(in, dataBits), crc12Poly, 12))
	writeCheckBits(in, dataBits, 12, uint32(crc))
	return crc
}

// CheckCRC12 verifies the trailing 12-bit CRC.
func CheckCRC12(in []byte, bitLength int) bool {
	dataBits := bitLength - 12
	want := readCheckBits(in, dataBits, 12)
	return uint32(bitCRC(bytesToBits(in, dataBits), crc12Poly, 12)) == want
}

// AddCRC15 computes the 15-bit CRC variant.
func AddCRC15(in []byte, bitLength int) uint16 {
	dataBits := bitLength - 15
	crc := uint16(bitCRC(bytesToBits(in, dataBits), crc15Poly, 15))
	writeCheckBits(in, dataBits, 15, uint32(crc))
	return crc
}

// CheckCRC15 verifies the trailing 15-bit CRC.
func CheckCRC15(in []byte, bitLength int) bool {
	dataBits := bitLength - 15
	want := readCheckBits(in, dataBits, 15)
	return uint32(bitCRC(bytesToBits(in, dataBits), crc15Poly, 15)) == want
}

func writeCheckBits(buf []byte, startBit, width int, val uint32) {
	for i := 0; i < width; i++ {
		bit := val&(1<<uint(width-1-i)) != 0
		bitio.WriteBit(buf, startBit+i, bit)
	}
}

func readCheckBits(buf []byte, startBit, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		v <<= 1
		if bitio.ReadBit(buf, startBit+i) {
			v |= 1
		}
	}
	return v
}

// --- CRC-16 CCITT (DMR CSBK/data-block integrity, NXDN layer-3 messages) ---

func crc16CCITT(in []byte, init uint16) uint16 {
	crc := init
	for _, b := range in {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// AddCCITT162 appends a 16-bit CCITT CRC (initial value 0x0000) to the last
// two bytes of in, over the first len(in)-2 bytes.
func AddCCITT162(in []byte, length int) {
	crc := ^crc16CCITT(in[:length-2], 0x0000)
	in[length-2] = byte(crc & 0xFF)
	in[length-1] = byte((crc >> 8) & 0xFF)
}

// CheckCCITT162 verifies the trailing CCITT CRC added by AddCCITT162.
func CheckCCITT162(in []byte, length int) bool {
	crc := ^crc16CCITT(in[:length-2], 0x0000)
	return in[length-2] == byte(crc&0xFF) && in[length-1] == byte((crc>>8)&0xFF)
}

// CalculateCCITT162 returns the CCITT CRC-16 (init 0x0000) over in without
// mutating it.
func CalculateCCITT162(in []byte) uint16 {
	return ^crc16CCITT(in, 0x0000)
}

// AddCCITT161 is the CCITT CRC-16 variant seeded with an initial generator
// of 0xFFFF (used by P25 NID/DUID protection).
func AddCCITT161(in []byte, length int) {
	crc := ^crc16CCITT(in[:length-2], 0xFFFF)
	in[length-2] = byte(crc & 0xFF)
	in[length-1] = byte((crc >> 8) & 0xFF)
}

// CheckCCITT161 verifies the 0xFFFF-seeded CCITT CRC-16.
func CheckCCITT161(in []byte, length int) bool {
	crc := ^crc16CCITT(in[:length-2], 0xFFFF)
	return in[length-2] == byte(crc&0xFF) && in[length-1] == byte((crc>>8)&0xFF)
}

// --- CRC-32 (FNE datagram integrity fallback / data-block PDUs) ---

// AddCRC32 appends a standard IEEE CRC-32 to the last 4 bytes of in.
func AddCRC32(in []byte, length int) {
	crc := crc32.ChecksumIEEE(in[:length-4])
	bitio.SetUint32BE(crc, in, length-4)
}

// CheckCRC32 verifies the trailing IEEE CRC-32.
func CheckCRC32(in []byte, length int) bool {
	crc := crc32.ChecksumIEEE(in[:length-4])
	return bitio.GetUint32BE(in, length-4) == crc
}

// --- CRC-8 (NXDN layer-2/3 short integrity) ---

// CRC8 computes a CRC-8 (poly 0x07, the standard CCITT-8 polynomial) over
// in.
func CRC8(in []byte) uint8 {
	var crc uint8
	for _, b := range in {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
