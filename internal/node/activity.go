package node

import (
	"sync"
	"time"

	"gossip_chat/internal/dataType"
)

const dateLayout = "2006-01-02 15:04:05"

// AdvertRecord is one sent or received peer advertisement. For received
// adverts To is the advertised endpoint and From the peer that advertised it;
// for sent adverts To is the destination and From is self.
type AdvertRecord struct {
	To   string
	From string
	Date string
}

// SourceRecord remembers a registry bootstrap: which registry handed out
// which peers, and when.
type SourceRecord struct {
	Addr  string
	Date  string
	Peers []dataType.Endpoint
}

// SnippetRecord is one snippet as observed locally, tagged with the logical
// clock value after the receive.
type SnippetRecord struct {
	Timestamp uint64
	Text      string
	Sender    string
}

// ActivityLog accumulates everything the node observed during its run. All
// appends take the mutex; the log is read-only once the node halts.
type ActivityLog struct {
	mu sync.Mutex

	peerSeen  map[dataType.Endpoint]bool
	peerOrder []dataType.Endpoint

	sources     []SourceRecord
	recvAdverts []AdvertRecord
	sentAdverts []AdvertRecord
	snippets    []SnippetRecord

	now func() time.Time
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{
		peerSeen: make(map[dataType.Endpoint]bool),
		now:      time.Now,
	}
}

// LogPeer records an endpoint as observed. The set is insertion ordered and
// duplicate-free.
func (l *ActivityLog) LogPeer(ep dataType.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.peerSeen[ep] {
		return
	}
	l.peerSeen[ep] = true
	l.peerOrder = append(l.peerOrder, ep)
}

// LogSource records the peers learned from one registry bootstrap.
func (l *ActivityLog) LogSource(addr string, peers []dataType.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources = append(l.sources, SourceRecord{
		Addr:  addr,
		Date:  l.now().Format(dateLayout),
		Peers: append([]dataType.Endpoint(nil), peers...),
	})
}

// LogRecvAdvert records a peer advertisement received from observedBy.
func (l *ActivityLog) LogRecvAdvert(observedBy, advertised dataType.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recvAdverts = append(l.recvAdverts, AdvertRecord{
		To:   advertised.String(),
		From: observedBy.String(),
		Date: l.now().Format(dateLayout),
	})
}

// LogSentAdvert records a keepalive advertisement sent to a peer.
func (l *ActivityLog) LogSentAdvert(to, from dataType.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sentAdverts = append(l.sentAdverts, AdvertRecord{
		To:   to.String(),
		From: from.String(),
		Date: l.now().Format(dateLayout),
	})
}

// LogSnippet records an observed snippet with the post-observe clock value.
func (l *ActivityLog) LogSnippet(ts uint64, text string, sender dataType.Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snippets = append(l.snippets, SnippetRecord{
		Timestamp: ts,
		Text:      text,
		Sender:    sender.String(),
	})
}
