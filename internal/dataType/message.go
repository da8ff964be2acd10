package dataType

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDatagramSize is the largest gossip datagram accepted on the wire. The
// datagram boundary is the message boundary; there is no length prefix.
const MaxDatagramSize = 2048

// Gossip opcodes. The first four bytes of every datagram select the handler.
const (
	OpPeer = "peer"
	OpSnip = "snip"
	OpStop = "stop"

	opcodeLen = 4
)

// Frame is one decoded gossip datagram: a four byte opcode and the trimmed
// remainder of the datagram.
type Frame struct {
	Opcode  string
	Payload string
}

// ParseFrame splits a raw datagram into opcode and payload. Datagrams shorter
// than the opcode are rejected; trailing whitespace on the payload is trimmed.
func ParseFrame(data []byte) (Frame, error) {
	if len(data) < opcodeLen {
		return Frame{}, fmt.Errorf("short datagram: %d bytes", len(data))
	}
	return Frame{
		Opcode:  string(data[:opcodeLen]),
		Payload: strings.TrimSpace(string(data[opcodeLen:])),
	}, nil
}

// EncodePeer builds a keepalive frame advertising the given endpoint.
func EncodePeer(ep Endpoint) []byte {
	return []byte(OpPeer + ep.String())
}

// EncodeSnip builds a snippet frame carrying a Lamport timestamp and text.
func EncodeSnip(ts uint64, text string) []byte {
	return []byte(OpSnip + strconv.FormatUint(ts, 10) + " " + text)
}

// EncodeStop builds the frame that terminates a listening node.
func EncodeStop() []byte {
	return []byte(OpStop)
}

// Snip is the decoded payload of a snip frame.
type Snip struct {
	Timestamp uint64
	Text      string
}

// ParseSnip splits a snip payload at the first space into timestamp and text.
// Payloads without a space or with a non-numeric timestamp are malformed and
// rejected.
func ParseSnip(payload string) (Snip, error) {
	ts, text, ok := strings.Cut(payload, " ")
	if !ok {
		return Snip{}, fmt.Errorf("snip payload %q: missing timestamp separator", payload)
	}
	n, err := strconv.ParseUint(ts, 10, 64)
	if err != nil {
		return Snip{}, fmt.Errorf("snip payload %q: bad timestamp: %w", payload, err)
	}
	return Snip{Timestamp: n, Text: text}, nil
}
