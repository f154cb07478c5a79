// Package coarsetime is a clock refreshed every 50ms by a background
// goroutine. Reading it costs one atomic load.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var now atomic.Int64

func init() {
	now.Store(time.Now().UnixNano())

	ticker := time.NewTicker(tick)
	go func() {
		for t := range ticker.C {
			now.Store(t.UnixNano())
		}
	}()
}

// Now returns the time of the last tick.
func Now() time.Time {
	return time.Unix(0, now.Load())
}

// UnixNano returns the time of the last tick in nanoseconds.
func UnixNano() int64 {
	return now.Load()
}
