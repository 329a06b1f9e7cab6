package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotCountersStartAtZero(t *testing.T) {
	r := New()
	snap := r.Snapshot()
	assert.Zero(t, snap.TotalBytesTransferred)
	assert.Zero(t, snap.ConnectionsAccepted)
	assert.Zero(t, snap.ConnectionsRejected)
	assert.Zero(t, snap.RangeRequestsTotal)
	assert.Zero(t, snap.RangeConflictsTotal)
}

func TestCountersAccumulate(t *testing.T) {
	r := New()
	r.AddBytesTransferred(100)
	r.AddBytesTransferred(50)
	r.IncConnectionsAccepted()
	r.IncConnectionsAccepted()
	r.IncConnectionsRejectedLoop()
	r.IncRangeRequests()
	r.IncRangeConflicts()

	snap := r.Snapshot()
	assert.EqualValues(t, 150, snap.TotalBytesTransferred)
	assert.EqualValues(t, 2, snap.ConnectionsAccepted)
	assert.EqualValues(t, 1, snap.ConnectionsRejected)
	assert.EqualValues(t, 1, snap.RangeRequestsTotal)
	assert.EqualValues(t, 1, snap.RangeConflictsTotal)
}

func TestUptimeDerivation(t *testing.T) {
	r := &Registry{startTime: time.Now().Add(-(2*86400 + 3*3600 + 4*60 + 5) * time.Second)}
	snap := r.Snapshot()
	assert.EqualValues(t, 2, snap.Uptime.Days)
	assert.EqualValues(t, 3, snap.Uptime.Hours)
	assert.EqualValues(t, 4, snap.Uptime.Minutes)
	// Allow a one-second margin for scheduling jitter between the deadline
	// above and the Snapshot() call.
	assert.InDelta(t, 5, snap.Uptime.Seconds, 1)
}

func TestConcurrentIncrementsAreRaceFree(t *testing.T) {
	r := New()
	const goroutines = 50
	done := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.AddBytesTransferred(1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}
	assert.EqualValues(t, goroutines*100, r.Snapshot().TotalBytesTransferred)
}
