package dataType

import "sync/atomic"

// LamportClock is the node's logical clock. Tick is called once per outgoing
// snippet, Observe once per incoming snippet timestamp. The value never
// decreases.
type LamportClock struct {
	current atomic.Uint64
}

func NewLamportClock() *LamportClock {
	return &LamportClock{}
}

func (c *LamportClock) Current() uint64 {
	return c.current.Load()
}

// Tick advances the clock and returns the new value.
func (c *LamportClock) Tick() uint64 {
	return c.current.Add(1)
}

// Observe merges a remote timestamp: current becomes max(current, t).
func (c *LamportClock) Observe(t uint64) {
	for {
		cur := c.current.Load()
		if t <= cur {
			return
		}
		if c.current.CompareAndSwap(cur, t) {
			return
		}
	}
}
