package fec

// Reed-Solomon over GF(64), used by P25's trunking signalling blocks:
// RS(24,12,13) for TSBK, RS(24,16,9) for the shorter MBT header, and
// RS(36,20,17) for the longer MBT/AMBT data blocks. Symbols are 6 bits
// wide (fits GF(2^6), primitive polynomial x^6+x+1), and decoding follows
// the standard syndrome -> Berlekamp-Massey -> Chien search -> Forney
// pipeline.

const (
	gfExpBits  = 6
	gfFieldLen = 1 << gfExpBits // 64
	gfPrimPoly = 0x43           // x^6 + x + 1
)

var gfExp [2 * gfFieldLen]int
var gfLog [gfFieldLen]int

func init() {
	x := 1
	for i := 0; i < gfFieldLen-1; i++ {
		gfExp[i] = x
		gfLog[x] = i
		x <<= 1
		if x&gfFieldLen != 0 {
			x ^= gfPrimPoly
		}
		x &= gfFieldLen - 1
	}
	for i := gfFieldLen - 1; i < 2*gfFieldLen; i++ {
		gfExp[i] = gfExp[i-(gfFieldLen-1)]
	}
}

func gfMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[gfLog[a]+gfLog[b]]
}

func gfDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return gfExp[(gfLog[a]-gfLog[b]+gfFieldLen-1)%(gfFieldLen-1)]
}

func gfPow(a, power int) int {
	if a == 0 {
		return 0
	}
	return gfExp[(gfLog[a]*power)%(gfFieldLen-1)]
}

func gfInv(a int) int {
	return gfExp[(gfFieldLen-1-gfLog[a])%(gfFieldLen-1)]
}

// polyEval evaluates a polynomial (coefficients highest-degree first) at x.
func polyEval(poly []int, x int) int {
	y := poly[0]
	for i := 1; i < len(poly); i++ {
		y = gfMul(y, x) ^ poly[i]
	}
	return y
}

func polyMul(a, b []int) []int {
	out := make([]int, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			out[i+j] ^= gfMul(ac, bc)
		}
	}
	return out
}

func rsGeneratorPoly(nsym int) []int {
	g := []int{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, []int{1, gfPow(2, i)})
	}
	return g
}

// rsEncode appends nsym parity symbols to data (each symbol a 6-bit value
// in 0..63) using systematic polynomial division against the generator.
func rsEncode(data []int, nsym int) []int {
	gen := rsGeneratorPoly(nsym)
	msg := make([]int, len(data)+nsym)
	copy(msg, data)
	for i := 0; i < len(data); i++ {
		coef := msg[i]
		if coef == 0 {
			continue
		}
		for j := 0; j < len(gen); j++ {
			msg[i+j] ^= gfMul(gen[j], coef)
		}
	}
	out := make([]int, len(data)+nsym)
	copy(out, data)
	copy(out[len(data):], msg[len(data):])
	return out
}

func rsSyndromes(msg []int, nsym int) []int {
	syn := make([]int, nsym)
	for i := 0; i < nsym; i++ {
		syn[i] = polyEval(msg, gfPow(2, i))
	}
	return syn
}

// rsErrorLocator runs Berlekamp-Massey over the syndromes (ascending
// index, i.e. syn[0] is the lowest power) and returns the error-locator
// polynomial, highest-degree coefficient first.
func rsErrorLocator(syn []int) []int {
	errLoc := []int{1}
	oldLoc := []int{1}
	for i := 0; i < len(syn); i++ {
		oldLoc = append(oldLoc, 0)
		delta := syn[i]
		for j := 1; j < len(errLoc); j++ {
			delta ^= gfMul(errLoc[len(errLoc)-1-j], syn[i-j])
		}
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				oldLoc = polyScale(errLoc, gfInv(delta))
				errLoc = newLoc
			}
			errLoc = polyXOR(errLoc, polyScale(oldLoc, delta))
		}
	}
	for len(errLoc) > 0 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	return errLoc
}

func polyScale(p []int, s int) []int {
	out := make([]int, len(p))
	for i, c := range p {
		out[i] = gfMul(c, s)
	}
	return out
}

func polyXOR(a, b []int) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 0; i < len(a); i++ {
		out[n-len(a)+i] ^= a[i]
	}
	for i := 0; i < len(b); i++ {
		out[n-len(b)+i] ^= b[i]
	}
	return out
}

// rsFindErrors locates error positions (index into msg, 0-based from the
// start) by Chien search over the error-locator roots, which are the
// inverses of the error locations.
func rsFindErrors(errLoc []int, msgLen int) ([]int, bool) {
	errs := len(errLoc) - 1
	var positions []int
	for i := 0; i < msgLen; i++ {
		if polyEval(errLoc, gfInv(gfPow(2, i))) == 0 {
			positions = append(positions, msgLen-1-i)
		}
	}
	if len(positions) != errs {
		return nil, false
	}
	return positions, true
}

func rsCorrectErrata(msg []int, syn []int, positions []int) ([]int, bool) {
	coeffPos := make([]int, len(positions))
	for i, p := range positions {
		coeffPos[i] = len(msg) - 1 - p
	}
	errLoc := []int{1}
	for _, p := range coeffPos {
		errLoc = polyMul(errLoc, []int{gfPow(2, p), 1})
	}

	synRev := make([]int, len(syn))
	for i, s := range syn {
		synRev[len(syn)-1-i] = s
	}
	forneySyn := synRev[len(synRev)-len(coeffPos):]
	errEval := polyMul(forneySyn, errLoc)
	start := len(errEval) - len(coeffPos)
	if start < 0 {
		start = 0
	}
	errEval = errEval[start:]

	corrected := make([]int, len(msg))
	copy(corrected, msg)
	for _, p := range coeffPos {
		x := gfPow(2, p)
		xInv := gfInv(x)

		errLocDeriv := 1
		for j := 0; j < len(coeffPos); j++ {
			if coeffPos[j] == p {
				continue
			}
			x2 := gfPow(2, coeffPos[j])
			term := 1 ^ gfMul(xInv, x2)
			errLocDeriv = gfMul(errLocDeriv, term)
		}
		if errLocDeriv == 0 {
			return nil, false
		}
		y := polyEval(errEval, xInv)
		magnitude := gfDiv(y, errLocDeriv)
		idx := len(msg) - 1 - p
		corrected[idx] ^= magnitude
	}
	return corrected, true
}

// rsDecode corrects up to nsym/2 symbol errors in msg (length = data+nsym)
// and returns the corrected codeword.
func rsDecode(msg []int, nsym int) ([]int, error) {
	syn := rsSyndromes(msg, nsym)
	allZero := true
	for _, s := range syn {
		if s != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return msg, nil
	}

	errLoc := rsErrorLocator(syn)
	if len(errLoc)-1 > nsym/2 {
		return nil, ErrIrrecoverable
	}
	positions, ok := rsFindErrors(errLoc, len(msg))
	if !ok {
		return nil, ErrIrrecoverable
	}
	corrected, ok := rsCorrectErrata(msg, syn, positions)
	if !ok {
		return nil, ErrIrrecoverable
	}
	finalSyn := rsSyndromes(corrected, nsym)
	for _, s := range finalSyn {
		if s != 0 {
			return nil, ErrIrrecoverable
		}
	}
	return corrected, nil
}

// EncodeRS241213 encodes 12 data symbols into a 24-symbol RS(24,12,13)
// codeword (P25 TSBK).
func EncodeRS241213(data []int) []int { return rsEncode(data, 12) }

// DecodeRS241213 corrects and strips a 24-symbol RS(24,12,13) codeword.
func DecodeRS241213(msg []int) ([]int, error) {
	fixed, err := rsDecode(msg, 12)
	if err != nil {
		return nil, err
	}
	return fixed[:12], nil
}

// EncodeRS24169 encodes 16 data symbols into a 24-symbol RS(24,16,9)
// codeword (P25 short MBT header).
func EncodeRS24169(data []int) []int { return rsEncode(data, 8) }

// DecodeRS24169 corrects and strips a 24-symbol RS(24,16,9) codeword.
func DecodeRS24169(msg []int) ([]int, error) {
	fixed, err := rsDecode(msg, 8)
	if err != nil {
		return nil, err
	}
	return fixed[:16], nil
}

// EncodeRS362017 encodes 20 data symbols into a 36-symbol RS(36,20,17)
// codeword (P25 long MBT/AMBT data blocks).
func EncodeRS362017(data []int) []int { return rsEncode(data, 16) }

// DecodeRS362017 corrects and strips a 36-symbol RS(36,20,17) codeword.
func DecodeRS362017(msg []int) ([]int, error) {
	fixed, err := rsDecode(msg, 16)
	if err != nil {
		return nil, err
	}
	return fixed[:20], nil
}
