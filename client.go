package servicepoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"

	"github.com/pior/servicepoint/internal/coarsetime"
)

// Config holds configuration for a Client.
type Config struct {
	// MaxConns is the maximum number of connections per display.
	// Zero means 1.
	MaxConns int32

	// Dial opens a connection to a display.
	// If nil, Dial opens a UDP connection.
	Dial func(ctx context.Context, addr string) (*Connection, error)

	// NewCircuitBreaker creates a circuit breaker for a display.
	// Called once per display address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) CircuitBreaker

	// FramePacing is the minimum interval between two frames sent to the
	// same display. Send waits for its turn. Zero disables pacing.
	FramePacing time.Duration

	// SkipUnchanged drops a frame when it is identical to the last frame
	// successfully sent to the display.
	SkipUnchanged bool

	// Logger receives connection and send logs. The zero value discards them.
	Logger zerolog.Logger
}

// displayPool is the per display state of a Client.
type displayPool struct {
	addr           string
	pool           *connPool
	circuitBreaker CircuitBreaker // nil if not configured
	limiter        *rate.Limiter  // nil if pacing is disabled
	lastFrame      atomic.Uint64  // fingerprint of the last frame sent, 0 if none
	lastSent       atomic.Int64   // unix nanoseconds of the last frame sent, 0 if none
}

// Client sends every frame to a fixed set of displays. It is safe for
// concurrent use.
type Client struct {
	addrs  []string
	config Config
	logger zerolog.Logger

	mu     sync.RWMutex
	pools  map[string]*displayPool
	closed bool

	stats clientStatsCollector
}

// NewClient creates a client for the given display addresses.
func NewClient(displays []string, config Config) (*Client, error) {
	if len(displays) == 0 {
		return nil, fmt.Errorf("servicepoint: no displays provided")
	}
	if config.MaxConns < 0 {
		return nil, fmt.Errorf("servicepoint: MaxConns must not be negative")
	}
	if config.MaxConns == 0 {
		config.MaxConns = 1
	}
	if config.Dial == nil {
		logger := config.Logger
		config.Dial = func(ctx context.Context, addr string) (*Connection, error) {
			return Dial(ctx, addr, WithLogger(logger))
		}
	}

	return &Client{
		addrs:  append([]string(nil), displays...),
		config: config,
		logger: config.Logger,
		pools:  make(map[string]*displayPool),
	}, nil
}

// Close closes the client and every pooled connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for _, dp := range c.pools {
		dp.pool.Close()
	}
}

// getOrCreatePool gets or creates the pool of a display.
func (c *Client) getOrCreatePool(addr string) (*displayPool, error) {
	c.mu.RLock()
	dp, exists := c.pools[addr]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrConnectionClosed
	}
	if exists {
		return dp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}
	if dp, exists := c.pools[addr]; exists {
		return dp, nil
	}

	pool, err := newConnPool(func(ctx context.Context) (*Connection, error) {
		return c.config.Dial(ctx, addr)
	}, c.config.MaxConns)
	if err != nil {
		return nil, err
	}

	dp = &displayPool{addr: addr, pool: pool}
	if c.config.NewCircuitBreaker != nil {
		dp.circuitBreaker = c.config.NewCircuitBreaker(addr)
	}
	if c.config.FramePacing > 0 {
		dp.limiter = rate.NewLimiter(rate.Every(c.config.FramePacing), 1)
	}
	c.pools[addr] = dp
	return dp, nil
}

// Send encodes s once and sends the frame to every display. It consumes s.
// Failures of individual displays are joined into the returned error.
func (c *Client) Send(ctx context.Context, s Sendable) error {
	p, err := s.intoPacket()
	if err != nil {
		return err
	}
	pk, err := p.take()
	if err != nil {
		return err
	}
	frame := pk.frame
	fingerprint := xxh3.Hash(frame)

	errs := make([]error, len(c.addrs))
	var wg sync.WaitGroup
	for i, addr := range c.addrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.sendTo(ctx, addr, frame, fingerprint); err != nil {
				errs[i] = fmt.Errorf("%s: %w", addr, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (c *Client) sendTo(ctx context.Context, addr string, frame []byte, fingerprint uint64) error {
	dp, err := c.getOrCreatePool(addr)
	if err != nil {
		c.stats.recordError()
		return err
	}

	if c.config.SkipUnchanged && dp.lastFrame.Load() == fingerprint {
		c.stats.recordSkipped()
		return nil
	}

	if dp.limiter != nil {
		if err := dp.limiter.Wait(ctx); err != nil {
			c.stats.recordError()
			return err
		}
	}

	if dp.circuitBreaker != nil {
		_, err = dp.circuitBreaker.Execute(func() (bool, error) {
			return true, c.sendDirect(ctx, dp, frame)
		})
	} else {
		err = c.sendDirect(ctx, dp, frame)
	}
	if err != nil {
		c.stats.recordError()
		c.logger.Debug().Err(err).Str("addr", addr).Msg("send failed")
		return err
	}

	dp.lastFrame.Store(fingerprint)
	dp.lastSent.Store(coarsetime.UnixNano())
	c.stats.recordSent(len(frame))
	return nil
}

// sendDirect acquires a connection, sends and releases or destroys it.
func (c *Client) sendDirect(ctx context.Context, dp *displayPool, frame []byte) error {
	resource, err := dp.pool.Acquire(ctx)
	if err != nil {
		return err
	}

	err = resource.Value().SendFrame(ctx, frame)
	if err != nil {
		if ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return err
	}

	resource.Release()
	return nil
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// DisplayStats contains the stats of one display.
type DisplayStats struct {
	Addr                string
	PoolStats           PoolStats
	CircuitBreakerState CircuitBreakerState

	// LastSent is the time of the last frame sent, within 50ms. Zero if
	// no frame reached the display yet.
	LastSent time.Time
}

// AllDisplayStats returns stats for every display a frame was sent to.
func (c *Client) AllDisplayStats() []DisplayStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]DisplayStats, 0, len(c.pools))
	for _, dp := range c.pools {
		s := DisplayStats{
			Addr:      dp.addr,
			PoolStats: dp.pool.Stats(),
		}
		if dp.circuitBreaker != nil {
			s.CircuitBreakerState = dp.circuitBreaker.State()
		}
		if ns := dp.lastSent.Load(); ns != 0 {
			s.LastSent = time.Unix(0, ns)
		}
		stats = append(stats, s)
	}
	return stats
}
