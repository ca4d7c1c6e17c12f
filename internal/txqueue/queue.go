// Package txqueue implements the bounded byte ring shared by a protocol
// controller (single producer) and the modem I/O surface (single
// consumer), adapted from the teacher's codec.RingBuffer /
// network.RingBuffer byte-ring pattern into a frame-oriented queue: each
// enqueued frame is prefixed with its length and the tag/RSSI header
// original_source's IModemPort.h describes, and immediate-priority frames
// jump to the head of the queue while preserving order among themselves.
package txqueue

import (
	"encoding/binary"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Tag classifies a queued frame's on-air disposition.
type Tag byte

const (
	TagData    Tag = 0x01
	TagEOT     Tag = 0x02
	TagNoData  Tag = 0x03
)

// ErrOverflow is returned by AddFrame when the ring lacks space; per the
// original behavior, this also clears the whole queue to recover.
var ErrOverflow = errors.New("txqueue: overflow")

// Queue is a bounded byte ring holding length-prefixed frames:
// [2-byte length][1-byte tag][1-byte rssi][payload...].
type Queue struct {
	name   string
	buf    []byte
	length uint32
	iPtr   uint32
	oPtr   uint32
	immLen uint32 // bytes of immediate-priority frames at the head not yet read

	depthGauge prometheus.Gauge
}

// New creates a queue with the given byte capacity (the spec's default is
// sized for >= 2x the largest protocol frame plus control-channel slack,
// e.g. 8 KiB).
func New(capacity uint32, name string, depthGauge prometheus.Gauge) *Queue {
	if capacity == 0 {
		panic("txqueue: capacity must be > 0")
	}
	return &Queue{
		name:       name,
		buf:        make([]byte, capacity),
		length:     capacity,
		depthGauge: depthGauge,
	}
}

func (q *Queue) freeSpace() uint32 {
	if q.oPtr > q.iPtr {
		return q.oPtr - q.iPtr
	}
	if q.iPtr > q.oPtr {
		return q.length - (q.iPtr - q.oPtr)
	}
	return q.length
}

// FreeSpace reports the bytes available before AddFrame would overflow,
// consulted by the trunking controller before scheduling a beacon.
func (q *Queue) FreeSpace() uint32 { return q.freeSpace() }

func (q *Queue) dataSize() uint32 { return q.length - q.freeSpace() }

func (q *Queue) pushByte(b byte) {
	q.buf[q.iPtr] = b
	q.iPtr++
	if q.iPtr == q.length {
		q.iPtr = 0
	}
}

func (q *Queue) popByte() byte {
	b := q.buf[q.oPtr]
	q.oPtr++
	if q.oPtr == q.length {
		q.oPtr = 0
	}
	return b
}

func (q *Queue) clear() {
	q.iPtr = 0
	q.oPtr = 0
	q.immLen = 0
}

// AddFrame appends a frame (tag, rssi, payload) at the tail for normal
// priority, or at the head for immediate priority (jumping the queue
// while preserving order among other immediate insertions). Returns
// ErrOverflow — and clears the queue — if there isn't enough space.
func (q *Queue) AddFrame(tag Tag, rssi byte, payload []byte, immediate bool) error {
	total := uint32(2 + 2 + len(payload))
	if total >= q.freeSpace() {
		q.clear()
		return ErrOverflow
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint16(frame, uint16(2+len(payload)))
	frame[2] = byte(tag)
	frame[3] = rssi
	copy(frame[4:], payload)

	if immediate {
		// Lift the immediate frames already at the head, put the new one
		// in front of the normal frames, then put the earlier ones back
		// ahead of it.
		held := make([]byte, q.immLen)
		for i := range held {
			held[i] = q.popByte()
		}
		q.pushFront(frame)
		q.pushFront(held)
		q.immLen += uint32(len(frame))
	} else {
		for _, b := range frame {
			q.pushByte(b)
		}
	}
	q.updateGauge()
	return nil
}

// pushFront inserts frame's bytes at the current read position so the
// next GetFrame call returns it first, implementing immediate priority.
func (q *Queue) pushFront(frame []byte) {
	for i := len(frame) - 1; i >= 0; i-- {
		if q.oPtr == 0 {
			q.oPtr = q.length - 1
		} else {
			q.oPtr--
		}
		q.buf[q.oPtr] = frame[i]
	}
}

// Frame is one dequeued frame.
type Frame struct {
	Tag     Tag
	RSSI    byte
	Payload []byte
}

// GetFrame reads and removes one complete frame, matching the modem
// consumer's one-frame-per-tick contract. Returns false if the queue is
// empty.
func (q *Queue) GetFrame() (Frame, bool) {
	if q.dataSize() < 4 {
		return Frame{}, false
	}
	lenBytes := []byte{q.peekAt(0), q.peekAt(1)}
	payloadLen := binary.BigEndian.Uint16(lenBytes) - 2
	if q.dataSize() < uint32(4+payloadLen) {
		return Frame{}, false
	}

	q.popByte()
	q.popByte()
	tag := Tag(q.popByte())
	rssi := q.popByte()
	payload := make([]byte, payloadLen)
	for i := range payload {
		payload[i] = q.popByte()
	}
	if q.immLen > 0 {
		q.immLen -= uint32(4 + payloadLen)
	}
	q.updateGauge()
	return Frame{Tag: tag, RSSI: rssi, Payload: payload}, true
}

func (q *Queue) peekAt(offset uint32) byte {
	idx := (q.oPtr + offset) % q.length
	return q.buf[idx]
}

func (q *Queue) updateGauge() {
	if q.depthGauge != nil {
		q.depthGauge.Set(float64(q.dataSize()))
	}
}

// IsEmpty reports whether the queue holds no frames.
func (q *Queue) IsEmpty() bool { return q.oPtr == q.iPtr }
