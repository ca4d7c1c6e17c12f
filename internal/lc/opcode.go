// Package lc defines the shared link-control opcode contract implemented
// by the DMR, P25 and NXDN variant sets in its dmr, p25 and nxdn
// subpackages: a factory keyed on the protocol's opcode byte produces a
// strongly-typed variant per original_source's csbk/tsbk/rcch class
// hierarchy, reworked here as a tagged sum type (an interface plus one
// struct per opcode) instead of C++ virtual dispatch.
package lc

import "github.com/dvmgo/trunkcore/internal/fec"

// Opcode is implemented by every link-control variant across all three
// protocols.
type Opcode interface {
	// Opcode returns the protocol-specific opcode value this variant was
	// decoded from (or will encode as).
	Opcode() byte
	// Decode parses raw into the variant's fields. Variants that carry a
	// CRC validate it first and return fec.ErrCRC if it fails; RawOpcode
	// and the NXDN RCCH variants check no CRC.
	Decode(raw []byte) error
	// Encode serializes the variant's fields back into a raw payload.
	// Typed variants write into a zeroed buffer (reserved bits zero) and
	// refresh the CRC where they carry one; RawOpcode returns its payload
	// unchanged.
	Encode() []byte
	// String names the variant for logging.
	String() string
}

// RawOpcode is a pass-through variant: it carries a pre-built payload
// through the FEC stack without re-serializing any fields, used for
// CSBK_RAW / OSP_TSBK_RAW / LC_TDULC_RAW / MESSAGE_TYPE_IDLE style
// passthroughs.
type RawOpcode struct {
	OpcodeValue byte
	Payload     []byte
}

func (r *RawOpcode) Opcode() byte { return r.OpcodeValue }

func (r *RawOpcode) Decode(raw []byte) error {
	r.Payload = append([]byte(nil), raw...)
	return nil
}

func (r *RawOpcode) Encode() []byte {
	return append([]byte(nil), r.Payload...)
}

func (r *RawOpcode) String() string { return "RAW" }

// VerifyCRC16 is the shared CRC gate every non-raw decoder runs before
// touching its fields — on failure the frame must be discarded before
// state-machine dispatch.
func VerifyCRC16(raw []byte) error {
	if !fec.CheckCCITT162(raw, len(raw)) {
		return fec.ErrCRC
	}
	return nil
}

// StampCRC16 refreshes the trailing CRC-16 after an encoder has written
// every other field.
func StampCRC16(raw []byte) {
	fec.AddCCITT162(raw, len(raw))
}
