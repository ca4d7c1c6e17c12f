// Package dmr implements the DMR CSBK (Control Signalling Block) opcode
// variants, one struct per opcode family, grounded file-for-file on
// original_source's src/common/dmr/lc/csbk/*.cpp class hierarchy.
package dmr

import (
	"fmt"

	"github.com/dvmgo/trunkcore/internal/bitio"
	"github.com/dvmgo/trunkcore/internal/lc"
)

// CSBK opcode values (CSBKO, 6 bits).
const (
	OpcodeUUVReq    byte = 0x04
	OpcodeUUAnsRsp  byte = 0x05
	OpcodeExtFnct   byte = 0x3D
	OpcodePClear    byte = 0x3F
	OpcodeTVGrant   byte = 0x06
	OpcodeRaw       byte = 0x3E
)

// FeatureID identifies the vendor feature-ID byte carried in every CSBK
// (FID_DMRA for the standard feature set this core implements).
const FeatureID byte = 0x10

// baseFields are the bits every non-raw CSBK shares: last-block marker and
// feature ID, packed at fixed byte offsets per original_source's CSBK.cpp.
type baseFields struct {
	LastBlock bool
	FeatureID byte
}

func (b *baseFields) decode(raw []byte) {
	b.LastBlock = raw[0]&0x80 != 0
	b.FeatureID = raw[1]
}

func (b *baseFields) encode(raw []byte, opcode byte) {
	raw[0] = opcode & 0x3F
	if b.LastBlock {
		raw[0] |= 0x80
	}
	raw[1] = b.FeatureID
}

// ExtFnct is CSBK_EXT_FNCT: an extended-function request/response,
// grounded on CSBK_EXT_FNCT.cpp's 64-bit packed field layout.
type ExtFnct struct {
	baseFields
	DataContent      bool
	ExtendedFunction uint16
	DstID            uint32
	SrcID            uint32
}

func (e *ExtFnct) Opcode() byte { return OpcodeExtFnct }

func (e *ExtFnct) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	e.decode(raw)
	e.DataContent = raw[2]&0x80 != 0
	e.ExtendedFunction = bitio.GetUint16BE(raw, 3)
	e.DstID = bitio.GetUint24BE(raw, 5)
	e.SrcID = bitio.GetUint24BE(raw, 8)
	return nil
}

func (e *ExtFnct) Encode() []byte {
	raw := make([]byte, 12)
	e.encode(raw, OpcodeExtFnct)
	if e.DataContent {
		raw[2] |= 0x80
	}
	bitio.SetUint16BE(e.ExtendedFunction, raw, 3)
	bitio.SetUint24BE(e.DstID, raw, 5)
	bitio.SetUint24BE(e.SrcID, raw, 8)
	lc.StampCRC16(raw)
	return raw
}

func (e *ExtFnct) String() string {
	return fmt.Sprintf("CSBK_EXT_FNCT(fn=%#x dst=%d src=%d)", e.ExtendedFunction, e.DstID, e.SrcID)
}

// TVGrant is CSBK_TV_GRANT: a talkgroup voice channel grant.
type TVGrant struct {
	baseFields
	LogicalChannel byte
	SlotNumber     byte
	DstID          uint32
	SrcID          uint32
}

func (g *TVGrant) Opcode() byte { return OpcodeTVGrant }

func (g *TVGrant) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	g.decode(raw)
	g.LogicalChannel = raw[2] >> 1
	g.SlotNumber = raw[2] & 0x01
	g.DstID = bitio.GetUint24BE(raw, 5)
	g.SrcID = bitio.GetUint24BE(raw, 8)
	return nil
}

func (g *TVGrant) Encode() []byte {
	raw := make([]byte, 12)
	g.encode(raw, OpcodeTVGrant)
	raw[2] = (g.LogicalChannel << 1) | (g.SlotNumber & 0x01)
	bitio.SetUint24BE(g.DstID, raw, 5)
	bitio.SetUint24BE(g.SrcID, raw, 8)
	lc.StampCRC16(raw)
	return raw
}

func (g *TVGrant) String() string {
	return fmt.Sprintf("CSBK_TV_GRANT(ch=%d slot=%d dst=%d src=%d)", g.LogicalChannel, g.SlotNumber, g.DstID, g.SrcID)
}

// UUAnsRsp is CSBK_UU_ANS_RSP: unit-to-unit answer response.
type UUAnsRsp struct {
	baseFields
	AnswerResponse byte
	DstID          uint32
	SrcID          uint32
}

func (u *UUAnsRsp) Opcode() byte { return OpcodeUUAnsRsp }

func (u *UUAnsRsp) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	u.decode(raw)
	u.AnswerResponse = raw[2] & 0x03
	u.DstID = bitio.GetUint24BE(raw, 5)
	u.SrcID = bitio.GetUint24BE(raw, 8)
	return nil
}

func (u *UUAnsRsp) Encode() []byte {
	raw := make([]byte, 12)
	u.encode(raw, OpcodeUUAnsRsp)
	raw[2] = u.AnswerResponse & 0x03
	bitio.SetUint24BE(u.DstID, raw, 5)
	bitio.SetUint24BE(u.SrcID, raw, 8)
	lc.StampCRC16(raw)
	return raw
}

func (u *UUAnsRsp) String() string {
	return fmt.Sprintf("CSBK_UU_ANS_RSP(resp=%d dst=%d src=%d)", u.AnswerResponse, u.DstID, u.SrcID)
}

// PClear is CSBK_P_CLEAR: preamble clear-down, carries no fields beyond
// the shared base.
type PClear struct {
	baseFields
}

func (p *PClear) Opcode() byte { return OpcodePClear }

func (p *PClear) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	p.decode(raw)
	return nil
}

func (p *PClear) Encode() []byte {
	raw := make([]byte, 12)
	p.encode(raw, OpcodePClear)
	lc.StampCRC16(raw)
	return raw
}

func (p *PClear) String() string { return "CSBK_P_CLEAR" }

// Decode dispatches a raw 12-byte CSBK payload to its typed opcode
// variant, keyed on the opcode byte at raw[0]&0x3F.
func Decode(raw []byte) (lc.Opcode, error) {
	if len(raw) != 12 {
		return nil, fmt.Errorf("dmr csbk: %w", fmt.Errorf("expected 12 bytes, got %d", len(raw)))
	}
	opcode := raw[0] & 0x3F
	var variant lc.Opcode
	switch opcode {
	case OpcodeExtFnct:
		variant = &ExtFnct{}
	case OpcodeTVGrant:
		variant = &TVGrant{}
	case OpcodeUUAnsRsp:
		variant = &UUAnsRsp{}
	case OpcodePClear:
		variant = &PClear{}
	default:
		variant = &lc.RawOpcode{OpcodeValue: opcode}
	}
	if err := variant.Decode(raw); err != nil {
		return nil, err
	}
	return variant, nil
}
