package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric the application registers.
const Namespace = "pentest_hub"

// Collector registers and updates named prometheus metrics.
type Collector interface {
	RegisterCounter(name, help string, labels ...string) error
	AddCounter(name string, value float64, labelValues ...string) error
	RegisterHistogram(name, help string, buckets []float64, labels ...string) error
	ObserveHistogram(name string, value float64, labelValues ...string) error
	MeasureFunctionExecutionTime(name string, labelValues ...string) (func(), error)
	UnregisterCounter(name string) error
	UnregisterHistogram(name string) error
	MetricsHandler() http.Handler
}

type prometheusCollector struct {
	namespace  string
	registry   *prometheus.Registry
	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// New returns a Collector backed by its own registry, which also carries the
// go runtime and process collectors.
func New(namespace string) Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusCollector{
		namespace:  namespace,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (c *prometheusCollector) fullName(name string) string {
	return prometheus.BuildFQName(c.namespace, "", name)
}

// RegisterCounter registers a counter vector.
func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullName := c.fullName(name)
	if _, exists := c.counters[fullName]; exists {
		return fmt.Errorf("counter '%s' already registered", fullName)
	}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.registry.Register(counter); err != nil {
		return fmt.Errorf("failed to register counter '%s': %w", fullName, err)
	}
	c.counters[fullName] = counter
	return nil
}

// AddCounter adds value to the counter with the given label values.
func (c *prometheusCollector) AddCounter(name string, value float64, labelValues ...string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fullName := c.fullName(name)
	counter, ok := c.counters[fullName]
	if !ok {
		return fmt.Errorf("counter '%s' not found", fullName)
	}
	m, err := counter.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return fmt.Errorf("counter '%s': %w", fullName, err)
	}
	m.Add(value)
	return nil
}

// RegisterHistogram registers a histogram vector. Nil buckets use the prometheus defaults.
func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullName := c.fullName(name)
	if _, exists := c.histograms[fullName]; exists {
		return fmt.Errorf("histogram '%s' already registered", fullName)
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := c.registry.Register(histogram); err != nil {
		return fmt.Errorf("failed to register histogram '%s': %w", fullName, err)
	}
	c.histograms[fullName] = histogram
	return nil
}

// ObserveHistogram records value in the histogram with the given label values.
func (c *prometheusCollector) ObserveHistogram(name string, value float64, labelValues ...string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fullName := c.fullName(name)
	histogram, ok := c.histograms[fullName]
	if !ok {
		return fmt.Errorf("histogram '%s' not found", fullName)
	}
	m, err := histogram.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return fmt.Errorf("histogram '%s': %w", fullName, err)
	}
	m.Observe(value)
	return nil
}

// MeasureFunctionExecutionTime starts a timer and returns a func that records the
// elapsed seconds in the named histogram.
func (c *prometheusCollector) MeasureFunctionExecutionTime(name string, labelValues ...string) (func(), error) {
	c.mu.RLock()
	_, ok := c.histograms[c.fullName(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("histogram '%s' not found", c.fullName(name))
	}

	start := time.Now()
	return func() {
		_ = c.ObserveHistogram(name, time.Since(start).Seconds(), labelValues...)
	}, nil
}

// UnregisterCounter removes a counter. Unknown names are ignored.
func (c *prometheusCollector) UnregisterCounter(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullName := c.fullName(name)
	counter, ok := c.counters[fullName]
	if !ok {
		return nil
	}
	c.registry.Unregister(counter)
	delete(c.counters, fullName)
	return nil
}

// UnregisterHistogram removes a histogram. Unknown names are ignored.
func (c *prometheusCollector) UnregisterHistogram(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullName := c.fullName(name)
	histogram, ok := c.histograms[fullName]
	if !ok {
		return nil
	}
	c.registry.Unregister(histogram)
	delete(c.histograms, fullName)
	return nil
}

// MetricsHandler serves the collector's registry in the prometheus text format.
func (c *prometheusCollector) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
