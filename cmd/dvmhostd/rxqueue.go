package main

import (
	"log/slog"
	"net"

	"github.com/dvmgo/trunkcore/internal/fnenet"
	"github.com/dvmgo/trunkcore/internal/txqueue"
)

// modemRXQueue adapts the modem pump's frame channel into the
// trunking.RXQueue contract: Drain pops at most one pending frame per
// tick, matching the modem's one-frame-per-tick contract Controller.Tick
// already assumes.
type modemRXQueue struct {
	protocol string
	ch       <-chan txqueue.Frame
	logger   *slog.Logger
}

func (q *modemRXQueue) Drain() bool {
	select {
	case frame := <-q.ch:
		q.logger.Debug("dvmhostd: modem frame received", "protocol", q.protocol, "tag", frame.Tag, "bytes", len(frame.Payload))
		return true
	default:
		return false
	}
}

// netDatagram pairs a decoded FNE datagram with the peer address it
// arrived from, since ReadDatagram reports both.
type netDatagram struct {
	dg   fnenet.Datagram
	addr *net.UDPAddr
}

// netRXQueue adapts the FNE socket pump's datagram channel into the
// trunking.RXQueue contract, mirroring modemRXQueue on the network side.
type netRXQueue struct {
	protocol string
	ch       <-chan netDatagram
	logger   *slog.Logger
}

func (q *netRXQueue) Drain() bool {
	select {
	case pkt := <-q.ch:
		q.logger.Debug("dvmhostd: fne datagram received", "protocol", q.protocol, "peer", pkt.addr.String(), "stream_id", pkt.dg.FNE.StreamID)
		return true
	default:
		return false
	}
}
