// Package metrics provides metrics collection and exposition for OpenPBRL.
// It integrates the Prometheus SDK to define and collect core pipeline
// metrics: corpus builds, sampling retries, training progress, evaluation
// accuracy, and relabeling throughput.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ============================================================================
// Metrics Collector
// ============================================================================

// MetricsCollector manages Prometheus metrics collection
type MetricsCollector struct {
	// Prometheus registry
	registry *prometheus.Registry

	// Namespace for metrics
	namespace string

	// Registered metrics
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// CollectorConfig defines metrics collector configuration
type CollectorConfig struct {
	// Namespace for all metrics
	Namespace string

	// Enable default Go runtime metrics
	EnableGoMetrics bool

	// Enable process metrics
	EnableProcessMetrics bool

	// Custom registry (optional)
	Registry *prometheus.Registry
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(cfg CollectorConfig) *MetricsCollector {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.EnableGoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}
	if cfg.EnableProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	collector := &MetricsCollector{
		registry:   registry,
		namespace:  cfg.Namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	collector.registerCoreMetrics()
	return collector
}

// registerCoreMetrics registers the pipeline's business metrics
func (m *MetricsCollector) registerCoreMetrics() {
	m.RegisterCounter("corpus_builds_total", "Total preference corpus builds", []string{"source"})
	m.RegisterCounter("sampling_retries_total", "Total trajectory rejection-sampling retries", nil)
	m.RegisterCounter("training_epochs_total", "Total reward model training epochs", nil)
	m.RegisterCounter("relabel_rows_total", "Total dataset rows relabeled", nil)
	m.RegisterCounter("runs_total", "Total relabeling runs by outcome", []string{"status"})
	m.RegisterGauge("training_loss", "Latest reward model training loss", nil)
	m.RegisterGauge("eval_accuracy", "Latest preference classification accuracy", nil)
	m.RegisterHistogram("run_duration_seconds", "Relabeling run duration",
		[]string{"phase"}, prometheus.ExponentialBuckets(0.1, 2, 14))
}

// ============================================================================
// Metric Registration
// ============================================================================

// RegisterCounter registers a counter vector
func (m *MetricsCollector) RegisterCounter(name, help string, labels []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.counters[name]; exists {
		return
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	m.registry.MustRegister(c)
	m.counters[name] = c
}

// RegisterGauge registers a gauge vector
func (m *MetricsCollector) RegisterGauge(name, help string, labels []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.gauges[name]; exists {
		return
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	m.registry.MustRegister(g)
	m.gauges[name] = g
}

// RegisterHistogram registers a histogram vector
func (m *MetricsCollector) RegisterHistogram(name, help string, labels []string, buckets []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.histograms[name]; exists {
		return
	}
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	m.registry.MustRegister(h)
	m.histograms[name] = h
}

// ============================================================================
// Metric Updates
// ============================================================================

// IncrementCounter increments a counter by 1
func (m *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	m.AddCounter(name, 1, labels)
}

// AddCounter adds a value to a counter
func (m *MetricsCollector) AddCounter(name string, value float64, labels map[string]string) {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()
	if !ok {
		return
	}
	c.With(labels).Add(value)
}

// SetGauge sets a gauge value
func (m *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	m.mu.RLock()
	g, ok := m.gauges[name]
	m.mu.RUnlock()
	if !ok {
		return
	}
	g.With(labels).Set(value)
}

// ObserveHistogram records a histogram observation
func (m *MetricsCollector) ObserveHistogram(name string, value float64, labels map[string]string) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()
	if !ok {
		return
	}
	h.With(labels).Observe(value)
}

// ============================================================================
// Exposition
// ============================================================================

// Handler returns the HTTP handler exposing the registry
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Gather collects current metric families; used in tests
func (m *MetricsCollector) Gather() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	out := make(map[string]float64, len(families))
	for _, fam := range families {
		var total float64
		for _, metric := range fam.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				total += metric.GetGauge().GetValue()
			}
		}
		out[fam.GetName()] = total
	}
	return out, nil
}
