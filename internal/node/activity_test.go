package node

import (
	"bufio"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gossip_chat/internal/dataType"
)

func fixedLog() *ActivityLog {
	l := NewActivityLog()
	l.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	}
	return l
}

func TestActivityLogPeerSetDeduplicates(t *testing.T) {
	l := fixedLog()
	a := dataType.Endpoint{IP: "10.0.0.1", Port: 5000}
	b := dataType.Endpoint{IP: "10.0.0.2", Port: 5000}

	l.LogPeer(a)
	l.LogPeer(b)
	l.LogPeer(a)

	assert.Equal(t, []dataType.Endpoint{a, b}, l.peerOrder)
}

func TestReportRoundTrip(t *testing.T) {
	l := fixedLog()
	self := dataType.Endpoint{IP: "127.0.0.1", Port: 40000}
	p1 := dataType.Endpoint{IP: "127.0.0.1", Port: 40001}
	p2 := dataType.Endpoint{IP: "127.0.0.1", Port: 40002}

	l.LogPeer(self)
	l.LogPeer(p1)
	l.LogPeer(p2)
	l.LogSource("136.159.5.22:55921", []dataType.Endpoint{p1, p2})
	l.LogRecvAdvert(p1, p2)
	l.LogRecvAdvert(p2, p1)
	l.LogSentAdvert(p1, self)
	l.LogSnippet(1, "hello world", self)

	report := l.Report()
	scan := bufio.NewScanner(strings.NewReader(report))

	readCount := func(section string) int {
		require.True(t, scan.Scan(), "missing %s count", section)
		n, err := strconv.Atoi(scan.Text())
		require.NoError(t, err, "%s count line %q", section, scan.Text())
		return n
	}
	skip := func(n int) {
		for i := 0; i < n; i++ {
			require.True(t, scan.Scan())
		}
	}

	assert.Equal(t, 3, readCount("peers"))
	skip(3)

	assert.Equal(t, 1, readCount("sources"))
	skip(2) // addr, date
	assert.Equal(t, 2, readCount("learned peers"))
	skip(2)

	assert.Equal(t, 2, readCount("received adverts"))
	skip(2)
	assert.Equal(t, 1, readCount("sent adverts"))
	skip(1)
	assert.Equal(t, 1, readCount("snippets"))
	require.True(t, scan.Scan())
	assert.Equal(t, "1 hello world 127.0.0.1:40000", scan.Text())

	assert.False(t, scan.Scan(), "trailing report lines")
}

func TestReportDeterministic(t *testing.T) {
	build := func() string {
		l := fixedLog()
		p := dataType.Endpoint{IP: "10.0.0.1", Port: 5000}
		l.LogPeer(p)
		l.LogSource("136.159.5.22:55921", []dataType.Endpoint{p})
		l.LogSentAdvert(p, p)
		l.LogSnippet(4, "snippet text", p)
		return l.Report()
	}
	assert.Equal(t, build(), build(), "report must be byte-for-byte reproducible")
}

func TestReportEmptyLog(t *testing.T) {
	report := fixedLog().Report()
	assert.Equal(t, "0\n0\n0\n0\n0\n", report)
}
