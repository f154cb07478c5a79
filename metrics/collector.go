// Package metrics exports servicepoint client statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pior/servicepoint"
)

// Source is implemented by *servicepoint.Client.
type Source interface {
	Stats() servicepoint.ClientStats
	AllDisplayStats() []servicepoint.DisplayStats
}

// Collector reads client statistics on every scrape.
type Collector struct {
	source Source

	frames          *prometheus.Desc
	bytes           *prometheus.Desc
	poolConnections *prometheus.Desc
	poolCreated     *prometheus.Desc
	poolDestroyed   *prometheus.Desc
	poolErrors      *prometheus.Desc
	circuitState    *prometheus.Desc
	lastSent        *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for source. Register it with
// prometheus.Registry.MustRegister.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		frames: prometheus.NewDesc(
			"servicepoint_frames_total",
			"Frames per display by outcome",
			[]string{"status"}, nil, // sent, skipped, failed
		),
		bytes: prometheus.NewDesc(
			"servicepoint_sent_bytes_total",
			"Bytes of the frames sent",
			nil, nil,
		),
		poolConnections: prometheus.NewDesc(
			"servicepoint_pool_connections",
			"Connection pool statistics",
			[]string{"display", "state"}, nil, // total, active, idle
		),
		poolCreated: prometheus.NewDesc(
			"servicepoint_pool_connections_created_total",
			"Total connections created",
			[]string{"display"}, nil,
		),
		poolDestroyed: prometheus.NewDesc(
			"servicepoint_pool_connections_destroyed_total",
			"Total connections destroyed",
			[]string{"display"}, nil,
		),
		poolErrors: prometheus.NewDesc(
			"servicepoint_pool_acquire_errors_total",
			"Total connection acquire errors",
			[]string{"display"}, nil,
		),
		circuitState: prometheus.NewDesc(
			"servicepoint_circuit_breaker_state",
			"Circuit breaker state (0=closed, 1=half-open, 2=open)",
			[]string{"display"}, nil,
		),
		lastSent: prometheus.NewDesc(
			"servicepoint_last_frame_timestamp_seconds",
			"Unix time of the last frame sent to the display",
			[]string{"display"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.bytes
	ch <- c.poolConnections
	ch <- c.poolCreated
	ch <- c.poolDestroyed
	ch <- c.poolErrors
	ch <- c.circuitState
	ch <- c.lastSent
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.Sent), "sent")
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.Skipped), "skipped")
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.Errors), "failed")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Bytes))

	for _, d := range c.source.AllDisplayStats() {
		p := d.PoolStats
		ch <- prometheus.MustNewConstMetric(c.poolConnections, prometheus.GaugeValue, float64(p.TotalConns), d.Addr, "total")
		ch <- prometheus.MustNewConstMetric(c.poolConnections, prometheus.GaugeValue, float64(p.ActiveConns), d.Addr, "active")
		ch <- prometheus.MustNewConstMetric(c.poolConnections, prometheus.GaugeValue, float64(p.IdleConns), d.Addr, "idle")
		ch <- prometheus.MustNewConstMetric(c.poolCreated, prometheus.CounterValue, float64(p.CreatedConns), d.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolDestroyed, prometheus.CounterValue, float64(p.DestroyedConns), d.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolErrors, prometheus.CounterValue, float64(p.AcquireErrors), d.Addr)
		ch <- prometheus.MustNewConstMetric(c.circuitState, prometheus.GaugeValue, float64(d.CircuitBreakerState), d.Addr)
		if !d.LastSent.IsZero() {
			ch <- prometheus.MustNewConstMetric(c.lastSent, prometheus.GaugeValue, float64(d.LastSent.UnixNano())/1e9, d.Addr)
		}
	}
}
