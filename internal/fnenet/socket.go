package fnenet

import (
	"fmt"
	"log/slog"
	"net"
)

// Socket is the FNE UDP transport, adapted from the teacher's
// internal/network/udp_socket.go CUDPSocket port: same bind-or-ephemeral
// open behavior and blocking read loop, generalized from a
// DMR/YSF-specific client socket into the FNE peer socket every protocol
// controller's net pump reads datagrams from.
type Socket struct {
	conn      *net.UDPConn
	localAddr *net.UDPAddr
	logger    *slog.Logger
}

// NewSocket builds a socket bound to localPort (0 for an ephemeral
// client port).
func NewSocket(localPort int, logger *slog.Logger) *Socket {
	if logger == nil {
		logger = slog.Default()
	}
	return &Socket{localAddr: &net.UDPAddr{IP: net.IPv4zero, Port: localPort}, logger: logger}
}

// Open binds the socket.
func (s *Socket) Open() error {
	conn, err := net.ListenUDP("udp4", s.localAddr)
	if err != nil {
		return fmt.Errorf("fnenet: open socket: %w", err)
	}
	s.conn = conn
	s.logger.Info("fnenet: socket bound", "local_addr", conn.LocalAddr().String())
	return nil
}

// ReadDatagram blocks for the next UDP packet and decodes it as an FNE
// datagram, per spec §6's FNE wire boundary.
func (s *Socket) ReadDatagram(buf []byte) (Datagram, *net.UDPAddr, error) {
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return Datagram{}, nil, err
	}
	dg, err := Decode(buf[:n])
	if err != nil {
		return Datagram{}, addr, err
	}
	return dg, addr, nil
}

// WriteDatagram encodes rtp/fneHdr/message and sends it to addr.
func (s *Socket) WriteDatagram(addr *net.UDPAddr, rtp RTPHeader, fneHdr FNEHeader, message []byte) error {
	buf := Encode(rtp, fneHdr, message)
	_, err := s.conn.WriteToUDP(buf, addr)
	return err
}

// Close releases the socket.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Resolve looks up hostname (or parses it as a literal IP) the way the
// teacher's network.Lookup did, kept as a free function here since FNE
// peer addresses are configured by hostname or IP interchangeably.
func Resolve(hostname string, port int) (*net.UDPAddr, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil, fmt.Errorf("fnenet: resolve %s: %w", hostname, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return &net.UDPAddr{IP: v4, Port: port}, nil
		}
	}
	return nil, fmt.Errorf("fnenet: no IPv4 address for %s", hostname)
}
