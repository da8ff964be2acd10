package dataType

import "sync"

// Message is one received snippet queued for display.
type Message struct {
	Sender    Endpoint
	Text      string
	Timestamp uint64
}

// Mailbox carries lines between the console and the gossip node: outgoing
// lines the user typed, incoming snippets received off the wire. Both queues
// are unbounded FIFOs behind one mutex. Pop on an empty queue is not defined;
// callers guard with the Has methods.
type Mailbox struct {
	mu       sync.Mutex
	incoming []Message
	outgoing []string
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) PushOutgoing(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outgoing = append(m.outgoing, line)
}

func (m *Mailbox) HasOutgoing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outgoing) > 0
}

func (m *Mailbox) PopOutgoing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	line := m.outgoing[0]
	m.outgoing = m.outgoing[1:]
	return line
}

func (m *Mailbox) PushIncoming(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incoming = append(m.incoming, msg)
}

func (m *Mailbox) HasIncoming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.incoming) > 0
}

func (m *Mailbox) PopIncoming() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := m.incoming[0]
	m.incoming = m.incoming[1:]
	return msg
}
