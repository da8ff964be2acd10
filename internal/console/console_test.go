package console

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"gossip_chat/internal/dataType"
)

// syncBuffer lets the writer goroutine and the test share an output buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestConsoleReadsLinesIntoMailbox(t *testing.T) {
	mailbox := dataType.NewMailbox()
	c := New(mailbox, strings.NewReader("hello\nworld\n"), io.Discard, zap.NewNop())
	c.Run()
	defer c.Close()

	waitFor(t, func() bool { return mailbox.HasOutgoing() })
	assert.Equal(t, "hello", mailbox.PopOutgoing())
	waitFor(t, func() bool { return mailbox.HasOutgoing() })
	assert.Equal(t, "world", mailbox.PopOutgoing())
}

func TestConsoleCloseOnCloseLine(t *testing.T) {
	mailbox := dataType.NewMailbox()
	c := New(mailbox, strings.NewReader("first\nclose\nnever\n"), io.Discard, zap.NewNop())
	c.Run()

	waitFor(t, func() bool { return !c.active.Load() })
	waitFor(t, func() bool { return mailbox.HasOutgoing() })
	assert.Equal(t, "first", mailbox.PopOutgoing())
	assert.False(t, mailbox.HasOutgoing(), "lines after close must not be queued")
}

func TestConsoleCloseOnEOF(t *testing.T) {
	mailbox := dataType.NewMailbox()
	c := New(mailbox, strings.NewReader(""), io.Discard, zap.NewNop())
	c.Run()

	waitFor(t, func() bool { return !c.active.Load() })
}

func TestConsolePrintsIncoming(t *testing.T) {
	mailbox := dataType.NewMailbox()
	out := &syncBuffer{}
	// Block the reader on a stream that never yields a line.
	reader, _ := io.Pipe()
	c := New(mailbox, reader, out, zap.NewNop())
	c.Run()
	defer c.Close()

	mailbox.PushIncoming(dataType.Message{
		Sender:    dataType.Endpoint{IP: "10.0.0.2", Port: 5000},
		Text:      "hi",
		Timestamp: 7,
	})

	waitFor(t, func() bool { return strings.Contains(out.String(), "\n") })
	assert.Equal(t, "7 10.0.0.2:5000> hi\n", out.String())
}
