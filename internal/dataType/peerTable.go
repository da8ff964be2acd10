package dataType

import (
	"sync"
	"time"
)

// PeerTable maps known peers to the last time anything was heard from them.
// Liveness is decided only by Sweep; a failed send never removes a peer.
type PeerTable struct {
	mu    sync.RWMutex
	peers map[Endpoint]time.Time
	now   func() time.Time
}

// NewPeerTable creates a table containing only the node's own endpoint.
func NewPeerTable(self Endpoint) *PeerTable {
	pt := &PeerTable{
		peers: make(map[Endpoint]time.Time),
		now:   time.Now,
	}
	pt.Join(self)
	return pt
}

// Join records a peer as alive now. Re-joining an existing peer only
// refreshes its timestamp.
func (pt *PeerTable) Join(ep Endpoint) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.peers[ep] = pt.now()
}

// Touch refreshes a peer's last-seen time, inserting it if missing.
func (pt *PeerTable) Touch(ep Endpoint) {
	pt.Join(ep)
}

func (pt *PeerTable) Leave(ep Endpoint) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	delete(pt.peers, ep)
}

func (pt *PeerTable) Contains(ep Endpoint) bool {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	_, ok := pt.peers[ep]
	return ok
}

func (pt *PeerTable) Len() int {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return len(pt.peers)
}

// Snapshot returns a copy of the table. Broadcasters iterate the copy so the
// lock is never held across socket I/O.
func (pt *PeerTable) Snapshot() map[Endpoint]time.Time {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	snapshot := make(map[Endpoint]time.Time, len(pt.peers))
	for ep, seen := range pt.peers {
		snapshot[ep] = seen
	}
	return snapshot
}

// Sweep removes every peer not heard from within timeout and returns the
// evicted endpoints.
func (pt *PeerTable) Sweep(timeout time.Duration) []Endpoint {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	now := pt.now()
	var evicted []Endpoint
	for ep, seen := range pt.peers {
		if now.Sub(seen) > timeout {
			delete(pt.peers, ep)
			evicted = append(evicted, ep)
		}
	}
	return evicted
}
