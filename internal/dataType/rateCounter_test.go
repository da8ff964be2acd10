package dataType

import (
	"testing"
)

func TestTrafficCounterRate(t *testing.T) {
	tc := NewTrafficCounter(4, 10)
	peer := Endpoint{IP: "10.0.0.2", Port: 5000}

	for i := 0; i < 5; i++ {
		tc.Observe(peer)
	}
	if got := tc.Rate(peer, 10); got != 5 {
		t.Fatalf("rate %d, want 5", got)
	}
	if got := tc.Rate(Endpoint{IP: "10.0.0.9", Port: 5000}, 10); got != 0 {
		t.Fatalf("rate for silent peer %d, want 0", got)
	}
}

func TestTrafficCounterIsolatesPeers(t *testing.T) {
	tc := NewTrafficCounter(4, 10)
	a := Endpoint{IP: "10.0.0.2", Port: 5000}
	b := Endpoint{IP: "10.0.0.3", Port: 5000}

	tc.Observe(a)
	tc.Observe(a)
	tc.Observe(b)

	if got := tc.Rate(a, 10); got != 2 {
		t.Fatalf("rate(a) %d, want 2", got)
	}
	if got := tc.Rate(b, 10); got != 1 {
		t.Fatalf("rate(b) %d, want 1", got)
	}
}
