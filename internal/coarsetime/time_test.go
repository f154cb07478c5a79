package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowAdvances(t *testing.T) {
	start := UnixNano()
	require.NotZero(t, start)
	require.WithinDuration(t, time.Now(), Now(), time.Second)

	require.Eventually(t, func() bool {
		return UnixNano() > start
	}, time.Second, 10*time.Millisecond)
}

func BenchmarkTimeNow(b *testing.B) {
	var t time.Time

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = Now()
		}
	})

	_ = t
}
