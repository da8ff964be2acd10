package dataType

import (
	"testing"
)

func TestParseEndpointRoundTrip(t *testing.T) {
	cases := []string{
		"127.0.0.1:0",
		"10.0.0.2:5000",
		"192.168.1.100:65535",
		"136.159.5.22:55921",
	}
	for _, input := range cases {
		ep, err := ParseEndpoint(input)
		if err != nil {
			t.Fatalf("ParseEndpoint(%q): %v", input, err)
		}
		if got := ep.String(); got != input {
			t.Errorf("round trip %q -> %q", input, got)
		}
	}
}

func TestParseEndpointRejects(t *testing.T) {
	cases := []string{
		"",
		"null:5000",
		"127.0.0.1",
		"127.0.0.1:",
		"127.0.0.1:abc",
		"127.0.0.1:70000",
		"127.0.0.1:-1",
		"::1:5000",
	}
	for _, input := range cases {
		if ep, err := ParseEndpoint(input); err == nil {
			t.Errorf("ParseEndpoint(%q) = %v, want error", input, ep)
		}
	}
}

func TestParseEndpointTrimsWhitespace(t *testing.T) {
	ep, err := ParseEndpoint("  127.0.0.1:4000\r\n")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}
	if ep.String() != "127.0.0.1:4000" {
		t.Fatalf("got %v", ep)
	}
}

func TestEndpointMapKey(t *testing.T) {
	a := Endpoint{IP: "10.0.0.1", Port: 80}
	b := Endpoint{IP: "10.0.0.1", Port: 80}
	m := map[Endpoint]bool{a: true}
	if !m[b] {
		t.Fatal("equal endpoints must hash to the same key")
	}
}
