// Package frame holds the shared on-air frame records used across DMR, P25
// and NXDN: slot-type bursts, sync patterns, the P25 network identifier,
// and DMR's embedded link-control fragments.
package frame

import (
	"github.com/dvmgo/trunkcore/internal/bitio"
	"github.com/dvmgo/trunkcore/internal/fec"
)

// SlotType carries a DMR burst's color code and data type, protected by a
// Golay(20,8,7) code across the slot's two 10-bit halves.
type SlotType struct {
	ColorCode byte
	DataType  byte
}

// Encode packs the slot type into a Golay(20,8,7)-protected 20-bit field.
func (s SlotType) Encode() uint32 {
	data := uint32(s.ColorCode&0x0F)<<4 | uint32(s.DataType&0x0F)
	return fec.EncodeGolay2087(data)
}

// DecodeSlotType recovers a SlotType from its 20-bit Golay-protected field.
func DecodeSlotType(code uint32) (SlotType, error) {
	data, err := fec.DecodeGolay2087(code)
	if err != nil {
		return SlotType{}, err
	}
	return SlotType{ColorCode: byte(data>>4) & 0x0F, DataType: byte(data) & 0x0F}, nil
}

// Sync patterns transmitted MSB-first, one per protocol/role combination
// that needs to be told apart on the air. The DMR and P25 patterns are 48
// bits (12 hex digits); the two NXDN values are 12 bits.
const (
	DMRSyncBSSourcedVoice  uint64 = 0x755FD7DF75F7
	DMRSyncBSSourcedData   uint64 = 0xDFF57D75DF5D
	DMRSyncMSSourcedVoice  uint64 = 0x7F7D5DD57DFD
	DMRSyncMSSourcedData   uint64 = 0xD5D7F77FD757
	P25SyncPattern         uint64 = 0x5575F5FF77FF
	NXDNSyncPatternFull    uint64 = 0xCD7
	NXDNSyncPatternHalf    uint64 = 0x59D
)

// NID is P25's Network Identifier: a 12-bit NAC and 4-bit DUID. A
// BCH(15,11) check protects the low 11 bits of the combined 16-bit
// NAC||DUID value; the top 5 NAC bits travel alongside uncorrected.
type NID struct {
	NAC  uint16 // 12 bits
	DUID byte   // 4 bits
}

// Encode packs NAC||DUID into the 15-bit BCH-protected field.
func (n NID) Encode() uint32 {
	data := uint32(n.NAC&0x0FFF)<<4 | uint32(n.DUID&0x0F)
	// BCH(15,11) only protects 11 data bits; fold the 16-bit NAC||DUID
	// value down by protecting its low 11 bits and carrying the high 5
	// bits alongside, uncorrected (the DUID and the low 7 NAC bits are
	// inside the BCH field).
	return fec.EncodeBCH1511(data & 0x7FF)
}

// DecodeNID recovers NAC and DUID from a 15-bit BCH-protected field plus
// the out-of-band high bits carried alongside it on air.
func DecodeNID(code uint32, highBits uint32) (NID, error) {
	data, err := fec.DecodeBCH1511(code)
	if err != nil {
		return NID{}, err
	}
	full := (highBits << 11) | data
	return NID{NAC: uint16(full>>4) & 0x0FFF, DUID: byte(full) & 0x0F}, nil
}

// EmbeddedLC carries a DMR Full Link Control message fragmented across the
// embedded-signalling field of four consecutive voice bursts (B through E
// of a superframe), each fragment Hamming(15,11,3)-protected.
type EmbeddedLC struct {
	Fragments [4][]bool // 4 fragments of 11 payload bits each (excludes the sync-adjacent burst)
}

// NewEmbeddedLC splits a 77-bit (rounded to 4*11=44 usable bits, the
// remainder reserved) Full LC payload into its four embedded fragments.
func NewEmbeddedLC(payload []bool) EmbeddedLC {
	var lc EmbeddedLC
	for i := 0; i < 4; i++ {
		frag := make([]bool, 11)
		start := i * 11
		for j := 0; j < 11 && start+j < len(payload); j++ {
			frag[j] = payload[start+j]
		}
		lc.Fragments[i] = frag
	}
	return lc
}

// EncodeFragment Hamming-protects the i'th fragment into its 15-bit
// transmitted form.
func (lc EmbeddedLC) EncodeFragment(i int) []bool {
	return fec.EncodeHamming15113V1(lc.Fragments[i])
}

// DecodeEmbeddedLC reassembles a Full LC payload from four received
// 15-bit Hamming-protected fragments, correcting each independently.
func DecodeEmbeddedLC(fragments [4][]bool) ([]bool, error) {
	out := make([]bool, 0, 44)
	for _, f := range fragments {
		data, err := fec.DecodeHamming15113V1(f)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// BurstSyncBit is a convenience wrapper around bitio's MSB-first accessors
// scoped to a 48-bit sync field, used when stamping a sync pattern into a
// 24-byte DMR burst at the reserved sync offset.
func BurstSyncBit(pattern uint64, index int) bool {
	return pattern&(uint64(1)<<uint(47-index)) != 0
}

// WriteSync writes a 48-bit sync pattern MSB-first starting at bitOffset.
func WriteSync(buf []byte, bitOffset int, pattern uint64) {
	for i := 0; i < 48; i++ {
		bitio.WriteBit(buf, bitOffset+i, BurstSyncBit(pattern, i))
	}
}
