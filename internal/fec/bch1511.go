package fec

// BCH(15,11,3), a single-error-correcting narrow-sense BCH code built from
// the primitive polynomial x^4+x+1 (generator 0x13) — DMR's Data Header
// and CSBK integrity layer when the Hamming(15,11) variants above aren't
// in play. Same systematic-division construction as Golay, with a
// single-bit-error syndrome table since the code's distance is 3.

const (
	bch1511Generator   = 0x13
	bch1511DataBits    = 11
	bch1511ParityBits  = 4
)

// EncodeBCH1511 encodes 11 data bits (low 11 bits of data) into a 15-bit
// systematic codeword: data in the high 11 bits, parity in the low 4.
func EncodeBCH1511(data uint32) uint32 {
	data &= (1 << bch1511DataBits) - 1
	parity := polyDivRemainder(data, bch1511DataBits, bch1511ParityBits, bch1511Generator)
	return (data << bch1511ParityBits) | parity
}

func bch1511Syndrome(codeword uint32) uint32 {
	data := (codeword >> bch1511ParityBits) & ((1 << bch1511DataBits) - 1)
	parity := codeword & ((1 << bch1511ParityBits) - 1)
	return polyDivRemainder(data, bch1511DataBits, bch1511ParityBits, bch1511Generator) ^ parity
}

var bch1511Table map[uint32]uint32

func buildBCH1511Table() map[uint32]uint32 {
	table := make(map[uint32]uint32, 15)
	for a := 0; a < 15; a++ {
		pattern := uint32(1) << uint(a)
		data := (pattern >> bch1511ParityBits) & ((1 << bch1511DataBits) - 1)
		parity := pattern & ((1 << bch1511ParityBits) - 1)
		syn := polyDivRemainder(data, bch1511DataBits, bch1511ParityBits, bch1511Generator) ^ parity
		if syn != 0 {
			table[syn] = pattern
		}
	}
	return table
}

// DecodeBCH1511 corrects a single bit error in a 15-bit codeword and
// returns the 11 data bits.
func DecodeBCH1511(codeword uint32) (uint32, error) {
	syn := bch1511Syndrome(codeword)
	if syn == 0 {
		return (codeword >> bch1511ParityBits) & ((1 << bch1511DataBits) - 1), nil
	}
	if bch1511Table == nil {
		bch1511Table = buildBCH1511Table()
	}
	pattern, ok := bch1511Table[syn]
	if !ok {
		return 0, ErrIrrecoverable
	}
	fixed := codeword ^ pattern
	return (fixed >> bch1511ParityBits) & ((1 << bch1511DataBits) - 1), nil
}
