package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exports cache metrics to Prometheus.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	cacheRequests *prometheus.CounterVec
	diskOps       *prometheus.CounterVec
	evictions     prometheus.Counter
	cacheSize     prometheus.Gauge
	cacheCapacity prometheus.Gauge
	cacheEntries  prometheus.Gauge

	server *http.Server
}

// Config represents metrics configuration.
type Config struct {
	Enabled   bool              `yaml:"enabled"`
	Port      int               `yaml:"port"`
	Path      string            `yaml:"path"`
	Labels    map[string]string `yaml:"labels"`
	Namespace string            `yaml:"namespace"`
	Subsystem string            `yaml:"subsystem"`
}

// DefaultConfig returns the metrics defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Port:      9090,
		Path:      "/metrics",
		Namespace: "contentcache",
		Labels:    make(map[string]string),
	}
}

// NewCollector creates a metrics collector. A disabled collector is inert:
// every method is a no-op.
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.Enabled {
		return &Collector{config: config}, nil
	}

	registry := prometheus.NewRegistry()
	c := &Collector{
		config:   config,
		registry: registry,
	}

	c.initMetrics()
	if err := c.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return c, nil
}

// NewDisabled returns an inert collector.
func NewDisabled() *Collector {
	c, _ := NewCollector(&Config{Enabled: false})
	return c
}

// Start serves the metrics endpoint until Stop is called.
func (c *Collector) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"contentcache-metrics"}`))
	})

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts the metrics endpoint down.
func (c *Collector) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

// RecordHit records a cache hit.
func (c *Collector) RecordHit() {
	if !c.config.Enabled {
		return
	}
	c.cacheRequests.With(prometheus.Labels{"type": "hit"}).Inc()
}

// RecordMiss records a cache miss.
func (c *Collector) RecordMiss() {
	if !c.config.Enabled {
		return
	}
	c.cacheRequests.With(prometheus.Labels{"type": "miss"}).Inc()
}

// RecordDiskRead records a whole-file read from disk.
func (c *Collector) RecordDiskRead(bytes int64) {
	if !c.config.Enabled {
		return
	}
	c.diskOps.With(prometheus.Labels{"op": "read"}).Inc()
}

// RecordDiskWrite records a buffer write-back to disk.
func (c *Collector) RecordDiskWrite(bytes int64) {
	if !c.config.Enabled {
		return
	}
	c.diskOps.With(prometheus.Labels{"op": "write"}).Inc()
}

// RecordEviction records an entry eviction.
func (c *Collector) RecordEviction() {
	if !c.config.Enabled {
		return
	}
	c.evictions.Inc()
}

// UpdateSize updates the resident-bytes and capacity gauges.
func (c *Collector) UpdateSize(current, capacity int64) {
	if !c.config.Enabled {
		return
	}
	c.cacheSize.Set(float64(current))
	c.cacheCapacity.Set(float64(capacity))
}

// UpdateEntryCount updates the entry-count gauge.
func (c *Collector) UpdateEntryCount(count int) {
	if !c.config.Enabled {
		return
	}
	c.cacheEntries.Set(float64(count))
}

func (c *Collector) initMetrics() {
	c.cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of cache lookups by outcome",
		},
		[]string{"type"},
	)

	c.diskOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "disk_operations_total",
			Help:      "Total number of whole-file disk reads and writes",
		},
		[]string{"op"},
	)

	c.evictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "evictions_total",
			Help:      "Total number of evicted entries",
		},
	)

	c.cacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "size_bytes",
			Help:      "Current resident bytes",
		},
	)

	c.cacheCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "capacity_bytes",
			Help:      "Current cache bound in bytes",
		},
	)

	c.cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "entries",
			Help:      "Current number of resident entries",
		},
	)
}

func (c *Collector) registerMetrics() error {
	metrics := []prometheus.Collector{
		c.cacheRequests,
		c.diskOps,
		c.evictions,
		c.cacheSize,
		c.cacheCapacity,
		c.cacheEntries,
	}

	for _, metric := range metrics {
		if err := c.registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}
