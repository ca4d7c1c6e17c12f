package fec

// Hamming(15,11,3) and Hamming(13,9,3) single-error-correcting codes, used
// to protect DMR's embedded signalling and short-burst fields. Two parity
// layouts exist in the wild for the (15,11,3) code depending on which data
// bits each parity checks (DMR voice-frame embedded LC uses one ordering,
// the short-LC burst the other) — both are implemented here as Hamming15113V1
// and Hamming15113V2.

// hammingMatrix lists, for each parity bit, the data-bit indices it covers.
type hammingMatrix struct {
	dataBits   int
	parityBits int
	parityEq   [][]int
}

var hamming15113V1 = hammingMatrix{
	dataBits:   11,
	parityBits: 4,
	parityEq: [][]int{
		{0, 1, 2, 3, 5, 7, 8},
		{1, 2, 3, 4, 6, 8, 9},
		{2, 3, 4, 5, 7, 9, 10},
		{0, 1, 2, 4, 6, 7, 10},
	},
}

var hamming15113V2 = hammingMatrix{
	dataBits:   11,
	parityBits: 4,
	parityEq: [][]int{
		{0, 1, 2, 3, 5, 7, 9},
		{1, 2, 3, 4, 6, 8, 9},
		{0, 2, 3, 4, 5, 6, 10},
		{0, 1, 3, 4, 7, 8, 10},
	},
}

var hamming1393 = hammingMatrix{
	dataBits:   9,
	parityBits: 4,
	parityEq: [][]int{
		{0, 1, 3, 5, 6},
		{1, 2, 4, 6, 7},
		{0, 1, 2, 5, 7, 8},
		{0, 2, 3, 4, 8},
	},
}

func (m hammingMatrix) parity(data []bool) []bool {
	parity := make([]bool, m.parityBits)
	for i, eq := range m.parityEq {
		var v bool
		for _, idx := range eq {
			v = v != data[idx]
		}
		parity[i] = v
	}
	return parity
}

// syndromeTable maps a syndrome value (parityBits-wide) to the codeword bit
// index it implicates, built by encoding each single-bit-error pattern once.
func (m hammingMatrix) syndromeTable() map[uint8]int {
	n := m.dataBits + m.parityBits
	table := make(map[uint8]int, n)
	for bit := 0; bit < n; bit++ {
		data := make([]bool, m.dataBits)
		parity := make([]bool, m.parityBits)
		if bit < m.dataBits {
			data[bit] = true
		} else {
			parity[bit-m.dataBits] = true
		}
		got := m.parity(data)
		var syn uint8
		for i := range got {
			syn <<= 1
			if got[i] != parity[i] {
				syn |= 1
			}
		}
		if syn != 0 {
			table[syn] = bit
		}
	}
	return table
}

// encode computes the full n-bit codeword (data followed by parity) for the
// given k data bits.
func (m hammingMatrix) encode(data []bool) []bool {
	parity := m.parity(data)
	out := make([]bool, m.dataBits+m.parityBits)
	copy(out, data)
	copy(out[m.dataBits:], parity)
	return out
}

// decode corrects a single-bit error in codeword (length dataBits+parityBits)
// in place and returns the corrected data bits. Returns ErrIrrecoverable if
// the syndrome does not match any known single-bit error position.
func (m hammingMatrix) decode(codeword []bool) ([]bool, error) {
	data := codeword[:m.dataBits]
	parity := codeword[m.dataBits:]
	computed := m.parity(data)

	var syn uint8
	for i := range computed {
		syn <<= 1
		if computed[i] != parity[i] {
			syn |= 1
		}
	}
	if syn == 0 {
		out := make([]bool, m.dataBits)
		copy(out, data)
		return out, nil
	}
	table := m.syndromeTable()
	bit, ok := table[syn]
	if !ok {
		return nil, ErrIrrecoverable
	}
	fixed := make([]bool, m.dataBits+m.parityBits)
	copy(fixed, codeword)
	fixed[bit] = !fixed[bit]
	out := make([]bool, m.dataBits)
	copy(out, fixed[:m.dataBits])
	return out, nil
}

// EncodeHamming15113V1 encodes 11 data bits into the 15-bit codeword used by
// DMR's embedded-LC Hamming layer.
func EncodeHamming15113V1(data []bool) []bool { return hamming15113V1.encode(data) }

// DecodeHamming15113V1 corrects and strips the 15-bit V1 codeword.
func DecodeHamming15113V1(codeword []bool) ([]bool, error) { return hamming15113V1.decode(codeword) }

// EncodeHamming15113V2 encodes 11 data bits into the 15-bit codeword used by
// DMR's short-LC Hamming layer.
func EncodeHamming15113V2(data []bool) []bool { return hamming15113V2.encode(data) }

// DecodeHamming15113V2 corrects and strips the 15-bit V2 codeword.
func DecodeHamming15113V2(codeword []bool) ([]bool, error) { return hamming15113V2.decode(codeword) }

// EncodeHamming1393 encodes 9 data bits into the 13-bit codeword used by
// BPTC(196,96)'s column check.
func EncodeHamming1393(data []bool) []bool { return hamming1393.encode(data) }

// DecodeHamming1393 corrects and strips the 13-bit codeword.
func DecodeHamming1393(codeword []bool) ([]bool, error) { return hamming1393.decode(codeword) }
