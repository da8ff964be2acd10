package node

import (
	"fmt"
	"strings"
)

// Report renders the activity log into the line-oriented report the registry
// expects on the closing session:
//
//	<nPeers>            then one peer endpoint per line
//	<nSources>          then per source: addr, date, count, learned peers
//	<nRecvAdverts>      then "<to> <from> <date>" per record
//	<nSentAdverts>      then "<to> <from> <date>" per record
//	<nSnippets>         then "<ts> <text> <sender>" per record
//
// The output is deterministic for a fixed log.
func (l *ActivityLog) Report() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder

	fmt.Fprintf(&b, "%d\n", len(l.peerOrder))
	for _, ep := range l.peerOrder {
		fmt.Fprintf(&b, "%s\n", ep)
	}

	fmt.Fprintf(&b, "%d\n", len(l.sources))
	for _, src := range l.sources {
		fmt.Fprintf(&b, "%s\n%s\n%d\n", src.Addr, src.Date, len(src.Peers))
		for _, ep := range src.Peers {
			fmt.Fprintf(&b, "%s\n", ep)
		}
	}

	fmt.Fprintf(&b, "%d\n", len(l.recvAdverts))
	for _, rec := range l.recvAdverts {
		fmt.Fprintf(&b, "%s %s %s\n", rec.To, rec.From, rec.Date)
	}

	fmt.Fprintf(&b, "%d\n", len(l.sentAdverts))
	for _, rec := range l.sentAdverts {
		fmt.Fprintf(&b, "%s %s %s\n", rec.To, rec.From, rec.Date)
	}

	fmt.Fprintf(&b, "%d\n", len(l.snippets))
	for _, snip := range l.snippets {
		fmt.Fprintf(&b, "%d %s %s\n", snip.Timestamp, snip.Text, snip.Sender)
	}

	return b.String()
}
