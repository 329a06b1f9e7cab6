package stats

import (
	"bytes"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// PrometheusMirror exposes the same counters as Registry through the
// Prometheus client library, for deployments that scrape /metrics instead
// of (or alongside) polling the JSON /stats endpoint.
type PrometheusMirror struct {
	registry *Registry

	bytesTransferred    prometheus.CounterFunc
	connectionsAccepted prometheus.CounterFunc
	connectionsRejected prometheus.CounterFunc
	rangeRequestsTotal  prometheus.CounterFunc
	rangeConflictsTotal prometheus.CounterFunc
	uptimeSeconds       prometheus.GaugeFunc
}

// NewPrometheusMirror registers CounterFunc/GaugeFunc collectors that read
// straight through to reg on every scrape, so the two views can never drift
// out of sync with each other.
func NewPrometheusMirror(reg *Registry) *PrometheusMirror {
	m := &PrometheusMirror{registry: reg}

	m.bytesTransferred = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "rangeproxy",
		Name:      "bytes_transferred_total",
		Help:      "Total bytes relayed to clients, counting response status lines, headers and bodies.",
	}, func() float64 { return float64(reg.totalBytesTransferred.Load()) })

	m.connectionsAccepted = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "rangeproxy",
		Name:      "connections_accepted_total",
		Help:      "Total connections accepted by the listener.",
	}, func() float64 { return float64(reg.connectionsAccepted.Load()) })

	m.connectionsRejected = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "rangeproxy",
		Name:      "connections_rejected_loop_total",
		Help:      "Total connections rejected for resolving back to the proxy's own listener.",
	}, func() float64 { return float64(reg.connectionsRejected.Load()) })

	m.rangeRequestsTotal = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "rangeproxy",
		Name:      "range_requests_total",
		Help:      "Total requests that carried a parseable byte-range specification.",
	}, func() float64 { return float64(reg.rangeRequestsTotal.Load()) })

	m.rangeConflictsTotal = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "rangeproxy",
		Name:      "range_conflicts_total",
		Help:      "Total requests rejected because header and query range specs disagreed.",
	}, func() float64 { return float64(reg.rangeConflictsTotal.Load()) })

	m.uptimeSeconds = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "rangeproxy",
		Name:      "uptime_seconds",
		Help:      "Seconds since the proxy process started.",
	}, func() float64 {
		snap := reg.Snapshot()
		return float64(snap.Uptime.Days*86400 + snap.Uptime.Hours*3600 + snap.Uptime.Minutes*60 + snap.Uptime.Seconds)
	})

	return m
}

// Handler returns the standard promhttp handler serving every metric
// registered through NewPrometheusMirror, for deployments that front the
// proxy's own raw-socket /metrics rendering with a conventional net/http
// mux instead.
func (m *PrometheusMirror) Handler() http.Handler {
	return promhttp.Handler()
}

// Render gathers every registered metric and encodes it in the Prometheus
// text exposition format, for serving over the proxy's own raw-socket admin
// endpoint (which has no net/http server behind it to hand promhttp.Handler
// a ResponseWriter).
func (m *PrometheusMirror) Render() ([]byte, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
