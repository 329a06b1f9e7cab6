// Package stats tracks the proxy's lifetime counters and renders them both
// as the JSON payload served from the admin /stats endpoint and as
// Prometheus metrics, mirroring the same underlying numbers through two
// faces for two different consumers.
package stats

import (
	"sync/atomic"
	"time"
)

// Registry holds every counter the proxy maintains across all connections.
// Every field is updated from multiple goroutines (one pair per connection),
// so each counter is a sync/atomic value rather than a plain int guarded by
// a mutex.
type Registry struct {
	startTime time.Time

	totalBytesTransferred atomic.Int64
	connectionsAccepted   atomic.Int64
	connectionsRejected   atomic.Int64
	rangeRequestsTotal    atomic.Int64
	rangeConflictsTotal   atomic.Int64
}

// New returns a Registry with its clock started at the current time.
func New() *Registry {
	return &Registry{startTime: time.Now()}
}

// AddBytesTransferred adds n to the lifetime byte counter. n may be zero;
// negative values are never produced by the proxy and are not guarded
// against here.
func (r *Registry) AddBytesTransferred(n int64) {
	r.totalBytesTransferred.Add(n)
}

// IncConnectionsAccepted records one more accepted connection.
func (r *Registry) IncConnectionsAccepted() {
	r.connectionsAccepted.Add(1)
}

// IncConnectionsRejectedLoop records one more connection rejected for
// pointing back at the proxy itself (the loop-protection check).
func (r *Registry) IncConnectionsRejectedLoop() {
	r.connectionsRejected.Add(1)
}

// IncRangeRequests records one more request that carried a parseable range
// specification.
func (r *Registry) IncRangeRequests() {
	r.rangeRequestsTotal.Add(1)
}

// IncRangeConflicts records one more request rejected because its header
// and query range specifications disagreed.
func (r *Registry) IncRangeConflicts() {
	r.rangeConflictsTotal.Add(1)
}

// Uptime is the elapsed-time breakdown the JSON snapshot exposes, derived
// days first, then hours, then minutes, then whatever seconds remain.
type Uptime struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Snapshot is the JSON shape served from the admin endpoint.
type Snapshot struct {
	TotalBytesTransferred int64  `json:"total_bytes_transferred"`
	ConnectionsAccepted   int64  `json:"connections_accepted"`
	ConnectionsRejected   int64  `json:"connections_rejected_loop"`
	RangeRequestsTotal    int64  `json:"range_requests_total"`
	RangeConflictsTotal   int64  `json:"range_conflicts_total"`
	Uptime                Uptime `json:"uptime"`
}

// Snapshot renders the current counter values and derived uptime.
func (r *Registry) Snapshot() Snapshot {
	elapsed := time.Since(r.startTime)
	totalSeconds := int64(elapsed.Seconds())

	days := totalSeconds / 86400
	remainder := totalSeconds % 86400
	hours := remainder / 3600
	remainder %= 3600
	minutes := remainder / 60
	seconds := remainder % 60

	return Snapshot{
		TotalBytesTransferred: r.totalBytesTransferred.Load(),
		ConnectionsAccepted:   r.connectionsAccepted.Load(),
		ConnectionsRejected:   r.connectionsRejected.Load(),
		RangeRequestsTotal:    r.rangeRequestsTotal.Load(),
		RangeConflictsTotal:   r.rangeConflictsTotal.Load(),
		Uptime: Uptime{
			Days:    days,
			Hours:   hours,
			Minutes: minutes,
			Seconds: seconds,
		},
	}
}
