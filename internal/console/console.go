package console

import (
	"bufio"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gossip_chat/internal/dataType"
)

const writerPoll = 100 * time.Millisecond

// Console bridges the user's terminal and the gossip node's mailbox: lines
// typed on the input stream become outgoing snippets, received snippets are
// printed as "<ts> <sender>> <text>". Close is cooperative; the input line
// "close" and end of input both end the console.
type Console struct {
	mailbox *dataType.Mailbox
	in      io.Reader
	out     io.Writer
	active  atomic.Bool
	logger  *zap.Logger
}

func New(mailbox *dataType.Mailbox, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	c := &Console{
		mailbox: mailbox,
		in:      in,
		out:     out,
		logger:  logger,
	}
	c.active.Store(true)
	return c
}

// Run starts the reader and writer activities. It returns immediately; both
// stop after Close.
func (c *Console) Run() {
	go c.read()
	go c.write()
}

// Close stops both activities at their next poll.
func (c *Console) Close() {
	c.active.Store(false)
}

func (c *Console) read() {
	scanner := bufio.NewScanner(c.in)
	for c.active.Load() && scanner.Scan() {
		line := scanner.Text()
		if line == "close" {
			c.Close()
			return
		}
		c.mailbox.PushOutgoing(line)
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("console input failed", zap.Error(err))
	}
	c.Close()
}

func (c *Console) write() {
	for c.active.Load() {
		if !c.mailbox.HasIncoming() {
			time.Sleep(writerPoll)
			continue
		}
		msg := c.mailbox.PopIncoming()
		if _, err := fmt.Fprintf(c.out, "%d %s> %s\n", msg.Timestamp, msg.Sender, msg.Text); err != nil {
			c.logger.Warn("console output failed", zap.Error(err))
		}
	}
}
