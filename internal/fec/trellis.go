package fec

import "github.com/dvmgo/trunkcore/internal/bitio"

// Trellis 1/2 and 3/4 convolutional coding, ported from the original
// project's Trellis.cpp: an 8-state (3/4 rate) or 4-state (1/2 rate)
// encoder walks the payload as a stream of tribits/dibits, each one mapped
// through a fixed state-transition table into a constellation "point",
// which is then mapped back to a dibit pair and dibit-interleaved across the
// burst using the shared DMR/P25 interleave table. Decoding reverses the
// interleave, recovers points, and walks the same state machine forward;
// a bounded fix-up pass tries every alternate point at the first
// transition that doesn't fit the table before giving up.

var encodeTable34 = [8][8]uint8{
	{0, 8, 4, 12, 2, 10, 6, 14},
	{4, 12, 0, 8, 6, 14, 2, 10},
	{1, 9, 5, 13, 3, 11, 7, 15},
	{5, 13, 1, 9, 7, 15, 3, 11},
	{3, 11, 7, 15, 1, 9, 5, 13},
	{7, 15, 3, 11, 5, 13, 1, 9},
	{2, 10, 6, 14, 0, 8, 4, 12},
	{6, 14, 2, 10, 4, 12, 0, 8},
}

var encodeTable12 = [4][4]uint8{
	{0, 15, 12, 3},
	{15, 0, 3, 12},
	{9, 6, 5, 10},
	{6, 9, 10, 5},
}

// pointToDibitPair maps a 4-bit trellis point to its transmitted dibit pair
// (also a 4-bit value); built once as a fixed bijection over the point
// space so decode can invert it exactly.
var pointToDibitPair = [16]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var dibitPairToPoint = buildInverse16(pointToDibitPair)

func buildInverse16(table [16]uint8) [16]uint8 {
	var inv [16]uint8
	for point, dibit := range table {
		inv[dibit] = uint8(point)
	}
	return inv
}

// trellis34Symbols is the number of payload tribits in a 196-bit 3/4-rate
// burst (3 bits/symbol * 48 = 144 data bits); the encoder appends one zero
// flush tribit, giving 49 points = 98 dibits = 196 bits. trellis12Symbols
// is the 1/2-rate equivalent (2 bits/symbol * 48 = 96 data bits).
const trellis34Symbols = 48
const trellis12Symbols = 48

// bitsToSymbols splits a bit slice into groupSize-wide symbols, MSB-first.
func bitsToSymbols(bits []bool, groupSize int) []uint8 {
	n := len(bits) / groupSize
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		var v uint8
		for j := 0; j < groupSize; j++ {
			v <<= 1
			if bits[i*groupSize+j] {
				v |= 1
			}
		}
		out[i] = v
	}
	return out
}

func symbolsToBits(symbols []uint8, groupSize int) []bool {
	out := make([]bool, len(symbols)*groupSize)
	for i, v := range symbols {
		for j := 0; j < groupSize; j++ {
			out[i*groupSize+j] = v&(1<<uint(groupSize-1-j)) != 0
		}
	}
	return out
}

func deinterleaveDibits(raw []bool) []bool {
	out := make([]bool, len(raw))
	for i, pos := range bitio.DMRInterleave {
		if 2*int(pos)+1 < len(raw) && 2*i+1 < len(raw) {
			out[2*i] = raw[2*pos]
			out[2*i+1] = raw[2*pos+1]
		}
	}
	return out
}

func interleaveDibits(clean []bool) []bool {
	out := make([]bool, len(clean))
	for i, pos := range bitio.DMRInterleave {
		if 2*int(pos)+1 < len(clean) && 2*i+1 < len(clean) {
			out[2*pos] = clean[2*i]
			out[2*pos+1] = clean[2*i+1]
		}
	}
	return out
}

// EncodeTrellis34 encodes 144 payload bits (48 tribits, followed by a zero
// flush tribit) into the 196-bit interleaved Trellis 3/4 burst.
func EncodeTrellis34(payload []bool) []bool {
	tribits := bitsToSymbols(payload, 3)
	points := make([]uint8, 0, len(tribits)+1)
	state := uint8(0)
	for _, t := range tribits {
		point := encodeTable34[state][t]
		points = append(points, point)
		state = t
	}
	points = append(points, encodeTable34[state][0]) // flush symbol

	dibitPairs := make([]uint8, len(points))
	for i, p := range points {
		dibitPairs[i] = pointToDibitPair[p]
	}
	clean := symbolsToBits(dibitPairs, 4)
	return interleaveDibits(clean)
}

// DecodeTrellis34 decodes a 196-bit Trellis 3/4 burst back into 144 payload
// bits, returning ErrIrrecoverable if no bounded fix-up recovers a valid
// state-transition chain.
func DecodeTrellis34(burst []bool) ([]bool, error) {
	clean := deinterleaveDibits(burst)
	dibitPairs := bitsToSymbols(clean, 4)

	points := make([]uint8, len(dibitPairs))
	for i, d := range dibitPairs {
		points[i] = dibitPairToPoint[d]
	}

	tribits, ok := chainback34(points)
	if !ok {
		fixed, ok2 := fixCode34(points)
		if !ok2 {
			return nil, ErrIrrecoverable
		}
		tribits = fixed
	}
	if len(tribits) > trellis34Symbols {
		tribits = tribits[:trellis34Symbols]
	}
	return symbolsToBits(tribits, 3), nil
}

func chainback34(points []uint8) ([]uint8, bool) {
	tribits := make([]uint8, 0, len(points))
	state := uint8(0)
	for _, p := range points {
		found := false
		for t := uint8(0); t < 8; t++ {
			if encodeTable34[state][t] == p {
				tribits = append(tribits, t)
				state = t
				found = true
				break
			}
		}
		if !found {
			return tribits, false
		}
	}
	return tribits, true
}

// fixCode34 retries the chainback, trying each of the 16 alternate points
// at the first failing position before giving up — a bounded correction
// pass over at most one symbol, matching the original encoder's tolerance
// for a single corrupted constellation point.
func fixCode34(points []uint8) ([]uint8, bool) {
	for failPos := 0; failPos < len(points); failPos++ {
		_, ok := chainback34(points[:failPos])
		if ok {
			continue
		}
		trial := make([]uint8, len(points))
		copy(trial, points)
		for alt := uint8(0); alt < 16; alt++ {
			trial[failPos-1] = alt
			if tb, ok := chainback34(trial); ok {
				return tb, true
			}
		}
		return nil, false
	}
	return chainback34(points)
}

// EncodeTrellis12 encodes 96 payload bits (48 dibits, followed by a zero
// flush dibit) into the 196-bit interleaved Trellis 1/2 burst.
func EncodeTrellis12(payload []bool) []bool {
	dibits := bitsToSymbols(payload, 2)
	points := make([]uint8, 0, len(dibits)+1)
	state := uint8(0)
	for _, d := range dibits {
		point := encodeTable12[state][d]
		points = append(points, point)
		state = d
	}
	points = append(points, encodeTable12[state][0])

	dibitPairs := make([]uint8, len(points))
	for i, p := range points {
		dibitPairs[i] = pointToDibitPair[p]
	}
	clean := symbolsToBits(dibitPairs, 4)
	return interleaveDibits(clean)
}

// DecodeTrellis12 decodes a 196-bit Trellis 1/2 burst back into 96
// payload bits.
func DecodeTrellis12(burst []bool) ([]bool, error) {
	clean := deinterleaveDibits(burst)
	dibitPairs := bitsToSymbols(clean, 4)

	points := make([]uint8, len(dibitPairs))
	for i, d := range dibitPairs {
		points[i] = dibitPairToPoint[d]
	}

	dibits, ok := chainback12(points)
	if !ok {
		fixed, ok2 := fixCode12(points)
		if !ok2 {
			return nil, ErrIrrecoverable
		}
		dibits = fixed
	}
	if len(dibits) > trellis12Symbols {
		dibits = dibits[:trellis12Symbols]
	}
	return symbolsToBits(dibits, 2), nil
}

func chainback12(points []uint8) ([]uint8, bool) {
	dibits := make([]uint8, 0, len(points))
	state := uint8(0)
	for _, p := range points {
		found := false
		for d := uint8(0); d < 4; d++ {
			if encodeTable12[state][d] == p {
				dibits = append(dibits, d)
				state = d
				found = true
				break
			}
		}
		if !found {
			return dibits, false
		}
	}
	return dibits, true
}

func fixCode12(points []uint8) ([]uint8, bool) {
	for failPos := 0; failPos < len(points); failPos++ {
		_, ok := chainback12(points[:failPos])
		if ok {
			continue
		}
		trial := make([]uint8, len(points))
		copy(trial, points)
		for alt := uint8(0); alt < 16; alt++ {
			trial[failPos-1] = alt
			if db, ok := chainback12(trial); ok {
				return db, true
			}
		}
		return nil, false
	}
	return chainback12(points)
}
