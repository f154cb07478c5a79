package servicepoint

import (
	"sync/atomic"
)

// PoolStats contains statistics about the connection pool of one display.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns
//   - Counters: AcquireCount, AcquireWaitCount, CreatedConns, DestroyedConns, AcquireErrors
type PoolStats struct {
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}

// ClientStats contains statistics about client sends. Counters are per
// display: one Send to three displays counts three.
type ClientStats struct {
	Sent    uint64 // Frames handed to a transport
	Skipped uint64 // Frames dropped because the display already shows them
	Errors  uint64 // Failed sends
	Bytes   uint64 // Bytes of the frames sent
}

type clientStatsCollector struct {
	sent    atomic.Uint64
	skipped atomic.Uint64
	errors  atomic.Uint64
	bytes   atomic.Uint64
}

func (c *clientStatsCollector) recordSent(n int) {
	c.sent.Add(1)
	c.bytes.Add(uint64(n))
}

func (c *clientStatsCollector) recordSkipped() {
	c.skipped.Add(1)
}

func (c *clientStatsCollector) recordError() {
	c.errors.Add(1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Sent:    c.sent.Load(),
		Skipped: c.skipped.Load(),
		Errors:  c.errors.Load(),
		Bytes:   c.bytes.Load(),
	}
}
