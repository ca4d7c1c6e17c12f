package fec

import "math/bits"

// Golay(24,12,8) and the (20,8,7) shortened variant used by DMR's
// Short-Link-Control and Full-Link-Control fields. Encoding follows the
// systematic generator-polynomial division the teacher package used
// (the cyclic (23,12) code against generator 0xC75, extended with an
// overall parity bit); decoding builds a syndrome table
// covering every correctable error pattern up to the code's guaranteed
// correction weight, the same bounded-weight approach as the Hamming
// syndrome tables in hamming.go.

const golay2412Generator = 0x0C75 // degree-11 generator of the (23,12) code
const golay2412ParityBits = 12    // 11 cyclic parity bits + 1 overall parity bit
const golay2412DataBits = 12
const golay23ParityBits = 11

// polyDivRemainder performs GF(2) polynomial division of (value << parityBits)
// by generator, returning the parityBits-wide remainder.
func polyDivRemainder(value uint32, dataBits, parityBits int, generator uint32) uint32 {
	reg := value << uint(parityBits)
	topBit := uint32(1) << uint(dataBits+parityBits-1)
	genShifted := generator << uint(dataBits-1)
	for i := 0; i < dataBits; i++ {
		if reg&topBit != 0 {
			reg ^= genShifted
		}
		topBit >>= 1
		genShifted >>= 1
	}
	return reg & ((1 << uint(parityBits)) - 1)
}

// EncodeGolay24128 encodes 12 data bits (packed LSB-first in the low 12
// bits of data) into a 24-bit systematic Golay codeword: data in the high
// 12 bits, parity in the low 12.
func EncodeGolay24128(data uint32) uint32 {
	data &= (1 << golay2412DataBits) - 1
	cw := (data << golay23ParityBits) | polyDivRemainder(data, golay2412DataBits, golay23ParityBits, golay2412Generator)
	return (cw << 1) | uint32(bits.OnesCount32(cw)&1)
}

func golay2412Syndrome(codeword uint32) uint32 {
	data := (codeword >> golay2412ParityBits) & ((1 << golay2412DataBits) - 1)
	parity := (codeword >> 1) & ((1 << golay23ParityBits) - 1)
	syn := polyDivRemainder(data, golay2412DataBits, golay23ParityBits, golay2412Generator) ^ parity
	return (syn << 1) | uint32(bits.OnesCount32(codeword)&1)
}

var golay2412Table map[uint32]uint32

// buildGolay2412Table enumerates every error pattern of weight <= 3 over the
// 24-bit codeword (the code's guaranteed correction distance) and records
// the lowest-weight pattern for each syndrome.
func buildGolay2412Table() map[uint32]uint32 {
	table := make(map[uint32]uint32)
	record := func(pattern uint32) {
		syn := golay2412Syndrome(pattern)
		if syn == 0 {
			return
		}
		if _, ok := table[syn]; !ok {
			table[syn] = pattern
		}
	}
	for a := 0; a < 24; a++ {
		record(uint32(1) << uint(a))
	}
	for a := 0; a < 24; a++ {
		for b := a + 1; b < 24; b++ {
			record((uint32(1) << uint(a)) | (uint32(1) << uint(b)))
		}
	}
	for a := 0; a < 24; a++ {
		for b := a + 1; b < 24; b++ {
			for c := b + 1; c < 24; c++ {
				record((uint32(1) << uint(a)) | (uint32(1) << uint(b)) | (uint32(1) << uint(c)))
			}
		}
	}
	return table
}

func golay2412ErrorPattern(syn uint32) (uint32, bool) {
	if golay2412Table == nil {
		golay2412Table = buildGolay2412Table()
	}
	p, ok := golay2412Table[syn]
	return p, ok
}

// DecodeGolay24128 corrects up to 3 bit errors in a 24-bit Golay codeword
// and returns the 12 data bits. Returns ErrIrrecoverable if the syndrome
// matches no known error pattern.
func DecodeGolay24128(codeword uint32) (uint32, error) {
	syn := golay2412Syndrome(codeword)
	if syn == 0 {
		return (codeword >> golay2412ParityBits) & ((1 << golay2412DataBits) - 1), nil
	}
	pattern, ok := golay2412ErrorPattern(syn)
	if !ok {
		return 0, ErrIrrecoverable
	}
	fixed := codeword ^ pattern
	return (fixed >> golay2412ParityBits) & ((1 << golay2412DataBits) - 1), nil
}

// EncodeGolay2087 encodes 8 data bits into DMR's 20-bit shortened Golay
// codeword by zero-extending to the (24,12) code's 12 data bits (the
// standard shortening construction) and dropping the 4 always-zero
// leading bits of the resulting 24-bit word.
func EncodeGolay2087(data uint32) uint32 {
	data &= 0xFF
	full := EncodeGolay24128(data)
	return full & 0xFFFFF // low 20 bits; high 4 data bits are always zero
}

// DecodeGolay2087 restores the implicit 4 zero leading bits, runs the
// (24,12) decoder, and returns the 8 data bits.
func DecodeGolay2087(codeword uint32) (uint32, error) {
	full := codeword & 0xFFFFF
	data, err := DecodeGolay24128(full)
	if err != nil {
		return 0, err
	}
	return data & 0xFF, nil
}
