package node

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gossip_chat/internal/dataType"
	"gossip_chat/internal/telemetry"
)

// Options tunes the node's timing and rate observation. Zero values fall back
// to the protocol defaults.
type Options struct {
	KeepaliveInterval time.Duration
	PeerTimeout       time.Duration
	BroadcastPoll     time.Duration

	// RateLimit/RateWindow enable the per-peer inbound datagram counter.
	// Exceeding the rate is logged and counted, never dropped.
	RateLimit  int64
	RateWindow int64
}

const (
	DefaultKeepaliveInterval = 5 * time.Second
	DefaultPeerTimeout       = 20 * time.Second
	DefaultBroadcastPoll     = 500 * time.Millisecond

	rateCounterShards = 16
)

// Node is the gossip node: one UDP endpoint shared by three activities
// (keepalive, broadcast, listen) over a common peer table, logical clock and
// activity log. Run blocks until a stop datagram arrives.
type Node struct {
	self    dataType.Endpoint
	conn    *net.UDPConn
	clock   *dataType.LamportClock
	peers   *dataType.PeerTable
	log     *ActivityLog
	mailbox *dataType.Mailbox
	running atomic.Bool

	opts    Options
	traffic *dataType.TrafficCounter
	logger  *zap.Logger
}

// New binds the node's UDP endpoint and seeds the peer table with self plus
// the bootstrap peers handed out by the registry at source. A self endpoint
// with port 0 is rebound to the kernel-assigned port.
func New(self dataType.Endpoint, source string, bootstrap []dataType.Endpoint, mailbox *dataType.Mailbox, logger *zap.Logger, opts Options) (*Node, error) {
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if opts.PeerTimeout <= 0 {
		opts.PeerTimeout = DefaultPeerTimeout
	}
	if opts.BroadcastPoll <= 0 {
		opts.BroadcastPoll = DefaultBroadcastPoll
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP(self.IP), Port: int(self.Port)})
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", self, err)
	}
	if self.Port == 0 {
		self.Port = uint16(conn.LocalAddr().(*net.UDPAddr).Port)
	}

	n := &Node{
		self:    self,
		conn:    conn,
		clock:   dataType.NewLamportClock(),
		peers:   dataType.NewPeerTable(self),
		log:     NewActivityLog(),
		mailbox: mailbox,
		opts:    opts,
		logger:  logger.With(zap.String("node", self.String())),
	}
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		n.traffic = dataType.NewTrafficCounter(rateCounterShards, opts.RateWindow)
	}

	n.log.LogPeer(self)
	for _, peer := range bootstrap {
		n.peers.Join(peer)
		n.log.LogPeer(peer)
		n.logger.Info("peer has joined", zap.String("peer", peer.String()), zap.String("source", source))
	}
	n.log.LogSource(source, bootstrap)

	telemetry.Peers.Set(float64(n.peers.Len()))
	return n, nil
}

// Self returns the node's own endpoint, with the real port after a port-0 bind.
func (n *Node) Self() dataType.Endpoint {
	return n.self
}

// Log exposes the activity log; it is read-only once Run returns.
func (n *Node) Log() *ActivityLog {
	return n.log
}

// Clock exposes the node's logical clock.
func (n *Node) Clock() *dataType.LamportClock {
	return n.clock
}

// Peers exposes the peer table.
func (n *Node) Peers() *dataType.PeerTable {
	return n.peers
}

// Run starts the keepalive and broadcast activities and listens until a stop
// datagram arrives, then waits for the others to observe the halt and closes
// the endpoint.
func (n *Node) Run() error {
	n.running.Store(true)
	n.logger.Info("gossip node started")

	var g errgroup.Group
	g.Go(n.keepalive)
	g.Go(n.broadcast)
	g.Go(n.listen)
	err := g.Wait()

	if cerr := n.conn.Close(); cerr != nil && err == nil {
		err = cerr
	}
	n.logger.Info("gossip node stopped")
	return err
}

// keepalive periodically advertises self to every known peer, then sweeps
// peers that went silent.
func (n *Node) keepalive() error {
	frame := dataType.EncodePeer(n.self)
	for n.running.Load() {
		snapshot := n.peers.Snapshot()
		n.logger.Debug("sending keepalive", zap.Int("peers", len(snapshot)))
		for peer := range snapshot {
			n.send(frame, peer)
			n.log.LogSentAdvert(peer, n.self)
		}

		evicted := n.peers.Sweep(n.opts.PeerTimeout)
		for _, peer := range evicted {
			n.logger.Info("peer has left", zap.String("peer", peer.String()))
		}
		telemetry.PeersEvicted.Add(float64(len(evicted)))
		telemetry.Peers.Set(float64(n.peers.Len()))
		if n.traffic != nil {
			n.traffic.GC()
		}

		time.Sleep(n.opts.KeepaliveInterval)
	}
	n.logger.Debug("keepalive stopped")
	return nil
}

// broadcast drains the outgoing mailbox, stamping each line with a fresh
// logical timestamp and multicasting it to the current peer snapshot.
func (n *Node) broadcast() error {
	for n.running.Load() {
		if !n.mailbox.HasOutgoing() {
			time.Sleep(n.opts.BroadcastPoll)
			continue
		}
		message := n.mailbox.PopOutgoing()
		ts := n.clock.Tick()
		frame := dataType.EncodeSnip(ts, message)
		snapshot := n.peers.Snapshot()
		n.logger.Debug("broadcasting snippet", zap.Uint64("ts", ts), zap.Int("peers", len(snapshot)))
		for peer := range snapshot {
			n.send(frame, peer)
		}
		telemetry.SnippetsBroadcast.Inc()
	}
	n.logger.Debug("broadcast stopped")
	return nil
}

// listen receives datagrams until a stop frame arrives, then flips the
// running flag so the other activities terminate.
func (n *Node) listen() error {
	defer n.running.Store(false)
	buf := make([]byte, dataType.MaxDatagramSize)
	for {
		length, addr, err := n.conn.ReadFromUDP(buf)
		if err != nil {
			n.logger.Warn("udp read failed", zap.Error(err))
			continue
		}
		sender := dataType.Endpoint{IP: addr.IP.To4().String(), Port: uint16(addr.Port)}

		frame, err := dataType.ParseFrame(buf[:length])
		if err != nil {
			n.logger.Debug("dropping datagram", zap.String("peer", sender.String()), zap.Error(err))
			continue
		}
		telemetry.DatagramsReceived.WithLabelValues(frame.Opcode).Inc()
		n.observeTraffic(sender)
		n.logger.Debug("received datagram",
			zap.String("opcode", frame.Opcode),
			zap.String("peer", sender.String()),
			zap.String("payload", frame.Payload))

		switch frame.Opcode {
		case dataType.OpPeer:
			n.onPeer(sender, frame.Payload)
		case dataType.OpSnip:
			n.onSnip(sender, frame.Payload)
		case dataType.OpStop:
			n.logger.Warn("stop received, shutting down", zap.String("peer", sender.String()))
			return nil
		default:
			n.logger.Debug("unknown opcode", zap.String("opcode", frame.Opcode), zap.String("peer", sender.String()))
		}
	}
}

// onPeer refreshes both the sender and the advertised endpoint and records
// the advertisement. A payload that does not parse drops the update but still
// leaves the loop healthy.
func (n *Node) onPeer(sender dataType.Endpoint, payload string) {
	advertised, err := dataType.ParseEndpoint(payload)
	if err != nil {
		n.logger.Warn("bad peer advertisement", zap.String("peer", sender.String()), zap.Error(err))
		return
	}
	n.peers.Touch(sender)
	n.peers.Touch(advertised)
	n.log.LogPeer(sender)
	n.log.LogPeer(advertised)
	n.log.LogRecvAdvert(sender, advertised)
	telemetry.Peers.Set(float64(n.peers.Len()))
}

// onSnip advances the clock past the snippet's timestamp and queues the
// snippet for display. Self-originated snippets are logged but not queued.
func (n *Node) onSnip(sender dataType.Endpoint, payload string) {
	snip, err := dataType.ParseSnip(payload)
	if err != nil {
		n.logger.Warn("bad snippet", zap.String("peer", sender.String()), zap.Error(err))
		return
	}
	n.peers.Touch(sender)
	n.clock.Observe(snip.Timestamp)
	now := n.clock.Current()
	if sender != n.self {
		n.mailbox.PushIncoming(dataType.Message{Sender: sender, Text: snip.Text, Timestamp: now})
	}
	n.log.LogSnippet(now, snip.Text, sender)
}

// send writes one frame to a peer. Failures are logged and counted; the peer
// stays in the table until the sweep times it out.
func (n *Node) send(frame []byte, peer dataType.Endpoint) {
	if _, err := n.conn.WriteToUDP(frame, peer.UDPAddr()); err != nil {
		n.logger.Warn("udp send failed", zap.String("peer", peer.String()), zap.Error(err))
		telemetry.SendErrors.Inc()
		return
	}
	telemetry.DatagramsSent.Inc()
}

func (n *Node) observeTraffic(sender dataType.Endpoint) {
	if n.traffic == nil {
		return
	}
	n.traffic.Observe(sender)
	if rate := n.traffic.Rate(sender, n.opts.RateWindow); rate > n.opts.RateLimit {
		telemetry.RateExceeded.Inc()
		n.logger.Warn("peer exceeds datagram rate",
			zap.String("peer", sender.String()),
			zap.Int64("rate", rate),
			zap.Int64("limit", n.opts.RateLimit))
	}
}
