// Package p25 implements the P25 TSBK (Trunking Signalling Block) opcode
// variants, grounded file-for-file on original_source's
// src/common/p25/lc/tsbk/*.cpp class hierarchy.
package p25

import (
	"fmt"

	"github.com/dvmgo/trunkcore/internal/bitio"
	"github.com/dvmgo/trunkcore/internal/lc"
)

// TSBK opcode values (LCO, 6 bits).
const (
	OpcodeGrpVChGrantUpd byte = 0x02
	OpcodeUUVCh          byte = 0x05
	OpcodeAdjStsBcast    byte = 0x3C
	OpcodeRFSSStsBcast   byte = 0x3A
	OpcodeIdenUp         byte = 0x3D
	OpcodeLocRegRsp      byte = 0x0B
	OpcodeSCCB           byte = 0x21
	OpcodeQueRsp         byte = 0x0D
	OpcodeTimeDateAnn    byte = 0x16
	OpcodeSyncBcast      byte = 0x27
	OpcodeRaw            byte = 0x3F
)

// MFIDStandard is the standard (non-vendor) manufacturer ID.
const MFIDStandard byte = 0x00

type baseFields struct {
	LastBlock bool
	MFID      byte
}

func (b *baseFields) decode(raw []byte) {
	b.LastBlock = raw[0]&0x80 != 0
	b.MFID = raw[1]
}

func (b *baseFields) encode(raw []byte, opcode byte) {
	raw[0] = opcode & 0x3F
	if b.LastBlock {
		raw[0] |= 0x80
	}
	raw[1] = b.MFID
}

// GrpVChGrantUpd is OSP_GRP_VCH_GRANT_UPD: a group voice channel grant
// update, refreshing an in-progress call's channel assignment.
type GrpVChGrantUpd struct {
	baseFields
	Channel1 uint16
	Group1   uint16
	Channel2 uint16
	Group2   uint16
}

func (g *GrpVChGrantUpd) Opcode() byte { return OpcodeGrpVChGrantUpd }

func (g *GrpVChGrantUpd) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	g.decode(raw)
	g.Channel1 = bitio.GetUint16BE(raw, 2)
	g.Group1 = bitio.GetUint16BE(raw, 4)
	g.Channel2 = bitio.GetUint16BE(raw, 6)
	g.Group2 = bitio.GetUint16BE(raw, 8)
	return nil
}

func (g *GrpVChGrantUpd) Encode() []byte {
	raw := make([]byte, 12)
	g.encode(raw, OpcodeGrpVChGrantUpd)
	bitio.SetUint16BE(g.Channel1, raw, 2)
	bitio.SetUint16BE(g.Group1, raw, 4)
	bitio.SetUint16BE(g.Channel2, raw, 6)
	bitio.SetUint16BE(g.Group2, raw, 8)
	lc.StampCRC16(raw)
	return raw
}

func (g *GrpVChGrantUpd) String() string {
	return fmt.Sprintf("OSP_GRP_VCH_GRANT_UPD(ch1=%d grp1=%d ch2=%d grp2=%d)", g.Channel1, g.Group1, g.Channel2, g.Group2)
}

// AdjStsBcast is OSP_ADJ_STS_BCAST: adjacent site status broadcast.
type AdjStsBcast struct {
	baseFields
	SiteID  uint16
	RFSSID  byte
	Channel uint16
	SysID   uint16
}

func (a *AdjStsBcast) Opcode() byte { return OpcodeAdjStsBcast }

func (a *AdjStsBcast) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	a.decode(raw)
	a.RFSSID = raw[2]
	a.SiteID = bitio.GetUint16BE(raw, 3)
	a.SysID = bitio.GetUint16BE(raw, 5)
	a.Channel = bitio.GetUint16BE(raw, 7)
	return nil
}

func (a *AdjStsBcast) Encode() []byte {
	raw := make([]byte, 12)
	a.encode(raw, OpcodeAdjStsBcast)
	raw[2] = a.RFSSID
	bitio.SetUint16BE(a.SiteID, raw, 3)
	bitio.SetUint16BE(a.SysID, raw, 5)
	bitio.SetUint16BE(a.Channel, raw, 7)
	lc.StampCRC16(raw)
	return raw
}

func (a *AdjStsBcast) String() string {
	return fmt.Sprintf("OSP_ADJ_STS_BCAST(site=%d rfss=%d ch=%d sys=%d)", a.SiteID, a.RFSSID, a.Channel, a.SysID)
}

// RFSSStsBcast is OSP_RFSS_STS_BCAST: this site's own status broadcast.
type RFSSStsBcast struct {
	baseFields
	SiteID  uint16
	RFSSID  byte
	Channel uint16
	SysID   uint16
	LRAID   byte
}

func (r *RFSSStsBcast) Opcode() byte { return OpcodeRFSSStsBcast }

func (r *RFSSStsBcast) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	r.decode(raw)
	r.LRAID = raw[2]
	r.RFSSID = raw[3]
	r.SiteID = bitio.GetUint16BE(raw, 4)
	r.Channel = bitio.GetUint16BE(raw, 6)
	r.SysID = bitio.GetUint16BE(raw, 8)
	return nil
}

func (r *RFSSStsBcast) Encode() []byte {
	raw := make([]byte, 12)
	r.encode(raw, OpcodeRFSSStsBcast)
	raw[2] = r.LRAID
	raw[3] = r.RFSSID
	bitio.SetUint16BE(r.SiteID, raw, 4)
	bitio.SetUint16BE(r.Channel, raw, 6)
	bitio.SetUint16BE(r.SysID, raw, 8)
	lc.StampCRC16(raw)
	return raw
}

func (r *RFSSStsBcast) String() string {
	return fmt.Sprintf("OSP_RFSS_STS_BCAST(site=%d rfss=%d ch=%d)", r.SiteID, r.RFSSID, r.Channel)
}

// IdenUp is OSP_IDEN_UP: channel-identifier/bandplan update.
type IdenUp struct {
	baseFields
	IdenID    byte
	BaseFreq  uint32
	ChBWKHz   uint16
	TxOffset  int32
	SpacingKH uint16
}

func (i *IdenUp) Opcode() byte { return OpcodeIdenUp }

func (i *IdenUp) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	i.decode(raw)
	i.IdenID = raw[2] >> 4
	i.ChBWKHz = bitio.GetUint16BE(raw, 3) & 0x01FF
	i.BaseFreq = bitio.GetUint32BE(raw, 5)
	i.SpacingKH = bitio.GetUint16BE(raw, 9)
	return nil
}

func (i *IdenUp) Encode() []byte {
	raw := make([]byte, 12)
	i.encode(raw, OpcodeIdenUp)
	raw[2] = (i.IdenID & 0x0F) << 4
	bitio.SetUint16BE(i.ChBWKHz&0x01FF, raw, 3)
	bitio.SetUint32BE(i.BaseFreq, raw, 5)
	bitio.SetUint16BE(i.SpacingKH, raw, 9)
	lc.StampCRC16(raw)
	return raw
}

func (i *IdenUp) String() string {
	return fmt.Sprintf("OSP_IDEN_UP(id=%d base=%d bw=%d)", i.IdenID, i.BaseFreq, i.ChBWKHz)
}

// QueRsp is OSP_QUE_RSP: queued (denied-for-now) response with a reason
// code, used for ChnResourceNotAvail and similar precondition denials.
type QueRsp struct {
	baseFields
	ServiceType byte
	Reason      byte
	DstID       uint32
	SrcID       uint32
}

func (q *QueRsp) Opcode() byte { return OpcodeQueRsp }

func (q *QueRsp) Decode(raw []byte) error {
	if err := lc.VerifyCRC16(raw); err != nil {
		return err
	}
	q.decode(raw)
	q.ServiceType = raw[2]
	q.Reason = raw[3]
	q.DstID = bitio.GetUint24BE(raw, 4)
	q.SrcID = bitio.GetUint24BE(raw, 7)
	return nil
}

func (q *QueRsp) Encode() []byte {
	raw := make([]byte, 12)
	q.encode(raw, OpcodeQueRsp)
	raw[2] = q.ServiceType
	raw[3] = q.Reason
	bitio.SetUint24BE(q.DstID, raw, 4)
	bitio.SetUint24BE(q.SrcID, raw, 7)
	lc.StampCRC16(raw)
	return raw
}

func (q *QueRsp) String() string {
	return fmt.Sprintf("OSP_QUE_RSP(reason=%d dst=%d src=%d)", q.Reason, q.DstID, q.SrcID)
}

// Decode dispatches a raw 12-byte TSBK payload to its typed opcode
// variant, keyed on the opcode byte at raw[0]&0x3F.
func Decode(raw []byte) (lc.Opcode, error) {
	if len(raw) != 12 {
		return nil, fmt.Errorf("p25 tsbk: expected 12 bytes, got %d", len(raw))
	}
	opcode := raw[0] & 0x3F
	var variant lc.Opcode
	switch opcode {
	case OpcodeGrpVChGrantUpd:
		variant = &GrpVChGrantUpd{}
	case OpcodeAdjStsBcast:
		variant = &AdjStsBcast{}
	case OpcodeRFSSStsBcast:
		variant = &RFSSStsBcast{}
	case OpcodeIdenUp:
		variant = &IdenUp{}
	case OpcodeQueRsp:
		variant = &QueRsp{}
	default:
		variant = &lc.RawOpcode{OpcodeValue: opcode}
	}
	if err := variant.Decode(raw); err != nil {
		return nil, err
	}
	return variant, nil
}
