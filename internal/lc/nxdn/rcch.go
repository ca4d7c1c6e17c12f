// Package nxdn implements the NXDN RCCH (Radio Control Channel) layer-3
// message variants, grounded on original_source's NXDN message-type
// constants (MESSAGE_TYPE_*).
package nxdn

import (
	"fmt"

	"github.com/dvmgo/trunkcore/internal/bitio"
	"github.com/dvmgo/trunkcore/internal/lc"
)

// RCCH message-type opcode values (6 bits).
const (
	MessageTypeSiteInfo  byte = 0x01
	MessageTypeSrvInfo   byte = 0x02
	MessageTypeRegC      byte = 0x03
	MessageTypeRegComm   byte = 0x31
	MessageTypeDstIDInfo byte = 0x38
	MessageTypeIdle      byte = 0x3F
)

const rcchLength = 20

type baseFields struct {
	StructureType byte // FR (full rate) vs HR framing marker
}

func (b *baseFields) decode(raw []byte) { b.StructureType = raw[0] >> 6 }

func (b *baseFields) encode(raw []byte, opcode byte) {
	raw[0] = (b.StructureType << 6) | (opcode & 0x3F)
}

// SiteInfo is MESSAGE_TYPE_SITE_INFO: site cadence and capability
// broadcast (bcch/rcch/ccch counters used by the round-robin scheduler).
type SiteInfo struct {
	baseFields
	LocationID     uint16
	BcchCount      byte
	RcchGrouping   byte
	CcchPagingCnt  byte
	CcchMultiCnt   byte
	RcchIterateCnt byte
}

func (s *SiteInfo) Opcode() byte { return MessageTypeSiteInfo }

func (s *SiteInfo) Decode(raw []byte) error {
	if len(raw) != rcchLength {
		return fmt.Errorf("nxdn rcch site_info: expected %d bytes, got %d", rcchLength, len(raw))
	}
	s.decode(raw)
	s.LocationID = bitio.GetUint16BE(raw, 1)
	s.BcchCount = raw[3] & 0x0F
	s.RcchGrouping = raw[4] & 0x0F
	s.CcchPagingCnt = raw[5] & 0x0F
	s.CcchMultiCnt = raw[6] & 0x0F
	s.RcchIterateCnt = raw[7] & 0x0F
	return nil
}

func (s *SiteInfo) Encode() []byte {
	raw := make([]byte, rcchLength)
	s.encode(raw, MessageTypeSiteInfo)
	bitio.SetUint16BE(s.LocationID, raw, 1)
	raw[3] = s.BcchCount & 0x0F
	raw[4] = s.RcchGrouping & 0x0F
	raw[5] = s.CcchPagingCnt & 0x0F
	raw[6] = s.CcchMultiCnt & 0x0F
	raw[7] = s.RcchIterateCnt & 0x0F
	return raw
}

func (s *SiteInfo) String() string {
	return fmt.Sprintf("MESSAGE_TYPE_SITE_INFO(loc=%d bcch=%d rcch=%d)", s.LocationID, s.BcchCount, s.RcchGrouping)
}

// SrvInfo is MESSAGE_TYPE_SRV_INFO: service-availability broadcast.
type SrvInfo struct {
	baseFields
	VoiceSvc bool
	DataSvc  bool
	RestrictedSvc bool
}

func (s *SrvInfo) Opcode() byte { return MessageTypeSrvInfo }

func (s *SrvInfo) Decode(raw []byte) error {
	if len(raw) != rcchLength {
		return fmt.Errorf("nxdn rcch srv_info: expected %d bytes, got %d", rcchLength, len(raw))
	}
	s.decode(raw)
	s.VoiceSvc = raw[1]&0x01 != 0
	s.DataSvc = raw[1]&0x02 != 0
	s.RestrictedSvc = raw[1]&0x04 != 0
	return nil
}

func (s *SrvInfo) Encode() []byte {
	raw := make([]byte, rcchLength)
	s.encode(raw, MessageTypeSrvInfo)
	if s.VoiceSvc {
		raw[1] |= 0x01
	}
	if s.DataSvc {
		raw[1] |= 0x02
	}
	if s.RestrictedSvc {
		raw[1] |= 0x04
	}
	return raw
}

func (s *SrvInfo) String() string {
	return fmt.Sprintf("MESSAGE_TYPE_SRV_INFO(voice=%v data=%v)", s.VoiceSvc, s.DataSvc)
}

// DstIDInfo is MESSAGE_TYPE_DST_ID_INFO: destination-ID advertisement for
// an in-progress group call, used by idle units scanning for traffic.
type DstIDInfo struct {
	baseFields
	DstID   uint16
	SrcID   uint16
	Channel byte
}

func (d *DstIDInfo) Opcode() byte { return MessageTypeDstIDInfo }

func (d *DstIDInfo) Decode(raw []byte) error {
	if len(raw) != rcchLength {
		return fmt.Errorf("nxdn rcch dst_id_info: expected %d bytes, got %d", rcchLength, len(raw))
	}
	d.decode(raw)
	d.DstID = bitio.GetUint16BE(raw, 1)
	d.SrcID = bitio.GetUint16BE(raw, 3)
	d.Channel = raw[5]
	return nil
}

func (d *DstIDInfo) Encode() []byte {
	raw := make([]byte, rcchLength)
	d.encode(raw, MessageTypeDstIDInfo)
	bitio.SetUint16BE(d.DstID, raw, 1)
	bitio.SetUint16BE(d.SrcID, raw, 3)
	raw[5] = d.Channel
	return raw
}

func (d *DstIDInfo) String() string {
	return fmt.Sprintf("MESSAGE_TYPE_DST_ID_INFO(dst=%d src=%d ch=%d)", d.DstID, d.SrcID, d.Channel)
}

// Decode dispatches a raw 20-byte RCCH message to its typed variant, keyed
// on the message-type opcode in the low 6 bits of raw[0].
func Decode(raw []byte) (lc.Opcode, error) {
	if len(raw) != rcchLength {
		return nil, fmt.Errorf("nxdn rcch: expected %d bytes, got %d", rcchLength, len(raw))
	}
	opcode := raw[0] & 0x3F
	var variant lc.Opcode
	switch opcode {
	case MessageTypeSiteInfo:
		variant = &SiteInfo{}
	case MessageTypeSrvInfo:
		variant = &SrvInfo{}
	case MessageTypeDstIDInfo:
		variant = &DstIDInfo{}
	default:
		variant = &lc.RawOpcode{OpcodeValue: opcode}
	}
	if err := variant.Decode(raw); err != nil {
		return nil, err
	}
	return variant, nil
}
