// Package fnenet implements the FNE (Fixed Network Equipment) datagram
// codec: an RTP header, RTP extension header, and FNE extension header
// wrapping a protocol message, ported from original_source's
// src/common/network/{RTPHeader,RTPExtensionHeader,RTPFNEHeader}.cpp.
package fnenet

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dvmgo/trunkcore/internal/fec"
)

// DVMFrameStart is the required RTP extension payload_type for every FNE
// datagram; decoders must reject anything else.
const DVMFrameStart uint16 = 0xFEFE

// RTPClockRate is the 8kHz clock the FNE datagram timestamp is scaled to.
const RTPClockRate = 8000

const (
	rtpHeaderLen    = 12
	rtpExtHeaderLen = 4
	fneExtLen       = 16
	fneExtLenWords  = 4 // extension length field counts 32-bit words
)

var (
	ErrBadPayloadType = errors.New("fnenet: payload_type != DVM_FRAME_START")
	ErrBadExtLength   = errors.New("fnenet: extension length != 4 words")
	ErrTooShort       = errors.New("fnenet: datagram shorter than header")
	ErrBadCRC         = errors.New("fnenet: fne crc-16 mismatch")
)

// RTPHeader is the 12-byte RTP transport header.
type RTPHeader struct {
	Version     byte // 2 bits, always 2
	Padding     bool
	Extension   bool
	CC          byte // 4 bits
	Marker      bool
	PayloadType byte // 7 bits, namespaced per message kind
	Sequence    uint16
	Timestamp   uint32
	SSRC        uint32
}

// NowTimestamp derives an RTP timestamp from a microsecond monotonic clock
// scaled to RTPClockRate.
func NowTimestamp(microseconds int64) uint32 {
	return uint32((microseconds * RTPClockRate) / 1_000_000)
}

func (h RTPHeader) encode(buf []byte) {
	buf[0] = (h.Version << 6) & 0xC0
	if h.Padding {
		buf[0] |= 0x20
	}
	if h.Extension {
		buf[0] |= 0x10
	}
	buf[0] |= h.CC & 0x0F

	buf[1] = h.PayloadType & 0x7F
	if h.Marker {
		buf[1] |= 0x80
	}
	binary.BigEndian.PutUint16(buf[2:4], h.Sequence)
	binary.BigEndian.PutUint32(buf[4:8], h.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], h.SSRC)
}

func decodeRTPHeader(buf []byte) RTPHeader {
	return RTPHeader{
		Version:     buf[0] >> 6,
		Padding:     buf[0]&0x20 != 0,
		Extension:   buf[0]&0x10 != 0,
		CC:          buf[0] & 0x0F,
		Marker:      buf[1]&0x80 != 0,
		PayloadType: buf[1] & 0x7F,
		Sequence:    binary.BigEndian.Uint16(buf[2:4]),
		Timestamp:   binary.BigEndian.Uint32(buf[4:8]),
		SSRC:        binary.BigEndian.Uint32(buf[8:12]),
	}
}

// FNEHeader is the FNE extension carried after the RTP extension header:
// a CRC-16 over the message body, the function/subfunction opcode pair,
// a per-call stream id, the sending peer's id, and an authoritative
// message length.
type FNEHeader struct {
	Func          byte
	SubFunc       byte
	StreamID      uint32
	PeerID        uint32
	MessageLength uint32
}

// NewStreamID mints a fresh per-call stream identifier.
func NewStreamID() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4])
}

// Datagram is a fully decoded FNE UDP payload.
type Datagram struct {
	RTP     RTPHeader
	FNE     FNEHeader
	Message []byte
}

// Encode serializes a datagram: RTP header, RTP extension header (payload
// type DVMFrameStart, length in words), FNE extension header with a
// freshly computed CRC-16, then the message body.
func Encode(rtp RTPHeader, fneHdr FNEHeader, message []byte) []byte {
	rtp.Extension = true
	fneHdr.MessageLength = uint32(len(message))

	total := rtpHeaderLen + rtpExtHeaderLen + fneExtLen + len(message)
	buf := make([]byte, total)
	rtp.encode(buf[:rtpHeaderLen])

	ext := buf[rtpHeaderLen : rtpHeaderLen+rtpExtHeaderLen]
	binary.BigEndian.PutUint16(ext[0:2], DVMFrameStart)
	binary.BigEndian.PutUint16(ext[2:4], uint16(fneExtLenWords))

	fneBuf := buf[rtpHeaderLen+rtpExtHeaderLen : rtpHeaderLen+rtpExtHeaderLen+fneExtLen]
	fneBuf[2] = fneHdr.Func
	fneBuf[3] = fneHdr.SubFunc
	binary.BigEndian.PutUint32(fneBuf[4:8], fneHdr.StreamID)
	binary.BigEndian.PutUint32(fneBuf[8:12], fneHdr.PeerID)
	binary.BigEndian.PutUint32(fneBuf[12:16], fneHdr.MessageLength)

	copy(buf[rtpHeaderLen+rtpExtHeaderLen+fneExtLen:], message)

	crc := fec.CalculateCCITT162(message)
	binary.BigEndian.PutUint16(fneBuf[0:2], crc)

	return buf
}

// Decode parses a raw UDP payload into a Datagram, validating the RTP
// extension payload type, extension length, and FNE CRC-16.
func Decode(buf []byte) (Datagram, error) {
	if len(buf) < rtpHeaderLen+rtpExtHeaderLen+fneExtLen {
		return Datagram{}, ErrTooShort
	}
	rtp := decodeRTPHeader(buf[:rtpHeaderLen])

	ext := buf[rtpHeaderLen : rtpHeaderLen+rtpExtHeaderLen]
	payloadType := binary.BigEndian.Uint16(ext[0:2])
	extLenWords := binary.BigEndian.Uint16(ext[2:4])
	if payloadType != DVMFrameStart {
		return Datagram{}, ErrBadPayloadType
	}
	if extLenWords != fneExtLenWords {
		return Datagram{}, ErrBadExtLength
	}

	fneBuf := buf[rtpHeaderLen+rtpExtHeaderLen : rtpHeaderLen+rtpExtHeaderLen+fneExtLen]
	crc := binary.BigEndian.Uint16(fneBuf[0:2])
	fneHdr := FNEHeader{
		Func:          fneBuf[2],
		SubFunc:       fneBuf[3],
		StreamID:      binary.BigEndian.Uint32(fneBuf[4:8]),
		PeerID:        binary.BigEndian.Uint32(fneBuf[8:12]),
		MessageLength: binary.BigEndian.Uint32(fneBuf[12:16]),
	}

	message := buf[rtpHeaderLen+rtpExtHeaderLen+fneExtLen:]
	if fec.CalculateCCITT162(message) != crc {
		return Datagram{}, ErrBadCRC
	}

	return Datagram{RTP: rtp, FNE: fneHdr, Message: message}, nil
}

var monotonicBase = time.Now()

// MonotonicMicros returns the current monotonic clock in microseconds
// (measured from package initialisation), the input NowTimestamp expects.
func MonotonicMicros() int64 {
	return time.Since(monotonicBase).Microseconds()
}
