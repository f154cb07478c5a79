package servicepoint

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientStatsCollector(t *testing.T) {
	var c clientStatsCollector

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.recordSent(100)
			c.recordSkipped()
			c.recordError()
		}()
	}
	wg.Wait()

	assert.Equal(t, ClientStats{Sent: 10, Skipped: 10, Errors: 10, Bytes: 1000}, c.snapshot())
}

func TestConnPoolStats(t *testing.T) {
	pool, err := newConnPool(func(ctx context.Context) (*Connection, error) {
		return Fake(), nil
	}, 2)
	if !assert.NoError(t, err) {
		return
	}
	defer pool.Close()

	a, err := pool.Acquire(context.Background())
	assert.NoError(t, err)
	b, err := pool.Acquire(context.Background())
	assert.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, int32(2), stats.TotalConns)
	assert.Equal(t, int32(2), stats.ActiveConns)
	assert.Equal(t, uint64(2), stats.CreatedConns)
	assert.Equal(t, uint64(2), stats.AcquireCount)

	a.Release()
	b.Release()

	stats = pool.Stats()
	assert.Equal(t, int32(2), stats.IdleConns)
	assert.Zero(t, stats.ActiveConns)
}
