package fnenet

import (
	"net"
	"sync"
)

// Peer is one FNE peer entry the core treats as read-only context: the
// auth handshake and peer-list management that populate this table live
// outside the core per spec §1's scope boundary.
type Peer struct {
	PeerID  uint32
	Addr    *net.UDPAddr
	Callsign string
}

// PeerTable is a concurrency-safe, read-mostly view of the currently
// known FNE peers. The outer shell's auth handshake goroutine is the
// only writer; protocol controllers only read it (e.g. to resolve the
// destination address for a grant's PERMIT RPC).
type PeerTable struct {
	mu    sync.RWMutex
	peers map[uint32]Peer
}

// NewPeerTable builds an empty peer table.
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: make(map[uint32]Peer)}
}

// Put records or replaces a peer's entry.
func (t *PeerTable) Put(p Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[p.PeerID] = p
}

// Remove deletes a peer's entry.
func (t *PeerTable) Remove(peerID uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, peerID)
}

// Get returns a peer by ID.
func (t *PeerTable) Get(peerID uint32) (Peer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.peers[peerID]
	return p, ok
}

// Len reports the number of known peers.
func (t *PeerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}
