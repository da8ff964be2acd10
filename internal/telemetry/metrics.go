package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	DatagramsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "datagrams_received_total",
			Help:      "Total gossip datagrams received, labeled by opcode.",
		},
		[]string{"opcode"},
	)

	DatagramsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "datagrams_sent_total",
			Help:      "Total gossip datagrams written to the socket.",
		},
	)

	SendErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "send_errors_total",
			Help:      "UDP send failures. Failed peers stay in the table until timeout.",
		},
	)

	PeersEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "peers_evicted_total",
			Help:      "Peers removed by the keepalive sweep.",
		},
	)

	SnippetsBroadcast = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "snippets_broadcast_total",
			Help:      "Snippets multicast to the peer set.",
		},
	)

	RateExceeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossip_chat",
			Name:      "rate_exceeded_total",
			Help:      "Datagrams observed from peers above the configured rate.",
		},
	)

	Peers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gossip_chat",
			Name:      "peers",
			Help:      "Current size of the peer table, including self.",
		},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "gossip_chat",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(DatagramsReceived, DatagramsSent, SendErrors, PeersEvicted, SnippetsBroadcast, RateExceeded, Peers, uptime)
}

// MetricsHandler exposes /metrics for the private registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve blocks on an HTTP listener that only exposes /metrics. Callers run it
// in its own goroutine; it lives for the rest of the process.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	return http.ListenAndServe(addr, mux)
}
