package gateway

import "sync/atomic"

// Counters tracks event-processing totals for the stats endpoint. All fields
// are atomics; one instance is shared by every handler goroutine.
type Counters struct {
	received       atomic.Int64
	verified       atomic.Int64
	rejected       atomic.Int64
	deduplicated   atomic.Int64
	dedupeDegraded atomic.Int64
	unknownLead    atomic.Int64
	processed      atomic.Int64
	dispatched     atomic.Int64
	dispatchFailed atomic.Int64
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"events_received":  c.received.Load(),
		"events_verified":  c.verified.Load(),
		"events_rejected":  c.rejected.Load(),
		"events_deduped":   c.deduplicated.Load(),
		"dedupe_degraded":  c.dedupeDegraded.Load(),
		"unknown_lead":     c.unknownLead.Load(),
		"events_processed": c.processed.Load(),
		"dispatch_success": c.dispatched.Load(),
		"dispatch_failure": c.dispatchFailed.Load(),
	}
}
