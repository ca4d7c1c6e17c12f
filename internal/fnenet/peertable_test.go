package fnenet

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeerTablePutGetRemove(t *testing.T) {
	table := NewPeerTable()
	table.Put(Peer{PeerID: 1, Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 62031}, Callsign: "KJ4ABC"})
	require.Equal(t, 1, table.Len())

	p, ok := table.Get(1)
	require.True(t, ok)
	require.Equal(t, "KJ4ABC", p.Callsign)

	table.Remove(1)
	require.Equal(t, 0, table.Len())
	_, ok = table.Get(1)
	require.False(t, ok)
}

func TestResolveParsesLiteralIP(t *testing.T) {
	addr, err := Resolve("127.0.0.1", 62031)
	require.NoError(t, err)
	require.Equal(t, 62031, addr.Port)
	require.True(t, addr.IP.Equal(net.IPv4(127, 0, 0, 1)))
}
