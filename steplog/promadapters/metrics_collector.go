// Package promadapters provides a Prometheus adapter for the steplog metrics interface.
package promadapters

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AntonStoeckl/steplog-go/steplog"
)

// ErrLabelMismatch is reported when a metric is recorded with other label keys than on its first use.
var ErrLabelMismatch = errors.New("label keys differ from the first use of the metric")

// MetricsCollector implements steplog.MetricsCollector with Prometheus vectors:
//   - RecordDuration -> HistogramVec in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// A vector is created and registered on the first use of a metric name. Its label
// keys are fixed by that first call; records with other keys are dropped and
// reported to the error handler.
type MetricsCollector struct {
	registerer prometheus.Registerer
	buckets    []float64
	onError    func(error)

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	labelKeys  map[string][]string
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithBuckets sets the histogram buckets in seconds. Default: prometheus.DefBuckets.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// WithErrorHandler receives registration and label errors. By default they are dropped.
func WithErrorHandler(onError func(error)) Option {
	return func(m *MetricsCollector) {
		m.onError = onError
	}
}

// NewMetricsCollector creates a collector registering its vectors with registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewMetricsCollector(registerer prometheus.Registerer, opts ...Option) *MetricsCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		onError:    func(error) {},
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		labelKeys:  make(map[string][]string),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handler serves the metrics of gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.histograms[metric]
	if !ok {
		keys := labelKeys(labels)
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    "Duration of step calls in seconds.",
			Buckets: m.buckets,
		}, keys)

		registered, err := m.register(vec)
		if err != nil {
			m.onError(err)
			return
		}

		if vec, ok = registered.(*prometheus.HistogramVec); !ok {
			m.onError(fmt.Errorf("%w: %s is registered as %T", ErrLabelMismatch, metric, registered))
			return
		}
		m.histograms[metric] = vec
		m.labelKeys[metric] = keys
	}

	values, err := m.labelValues(metric, labels)
	if err != nil {
		m.onError(err)
		return
	}

	vec.WithLabelValues(values...).Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.counters[metric]
	if !ok {
		keys := labelKeys(labels)
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metric,
			Help: "Number of step calls.",
		}, keys)

		registered, err := m.register(vec)
		if err != nil {
			m.onError(err)
			return
		}

		if vec, ok = registered.(*prometheus.CounterVec); !ok {
			m.onError(fmt.Errorf("%w: %s is registered as %T", ErrLabelMismatch, metric, registered))
			return
		}
		m.counters[metric] = vec
		m.labelKeys[metric] = keys
	}

	values, err := m.labelValues(metric, labels)
	if err != nil {
		m.onError(err)
		return
	}

	vec.WithLabelValues(values...).Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.gauges[metric]
	if !ok {
		keys := labelKeys(labels)
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metric,
			Help: "Latest value reported by a step.",
		}, keys)

		registered, err := m.register(vec)
		if err != nil {
			m.onError(err)
			return
		}

		if vec, ok = registered.(*prometheus.GaugeVec); !ok {
			m.onError(fmt.Errorf("%w: %s is registered as %T", ErrLabelMismatch, metric, registered))
			return
		}
		m.gauges[metric] = vec
		m.labelKeys[metric] = keys
	}

	values, err := m.labelValues(metric, labels)
	if err != nil {
		m.onError(err)
		return
	}

	vec.WithLabelValues(values...).Set(value)
}

// register returns the already registered collector when an identical one exists,
// so two MetricsCollectors can share a registry.
func (m *MetricsCollector) register(c prometheus.Collector) (prometheus.Collector, error) {
	err := m.registerer.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector, nil
	}

	return nil, err
}

func (m *MetricsCollector) labelValues(metric string, labels map[string]string) ([]string, error) {
	keys := m.labelKeys[metric]
	if len(keys) != len(labels) {
		return nil, fmt.Errorf("%w: %s wants [%s]", ErrLabelMismatch, metric, strings.Join(keys, ", "))
	}

	values := make([]string, len(keys))
	for i, key := range keys {
		v, ok := labels[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s wants [%s]", ErrLabelMismatch, metric, strings.Join(keys, ", "))
		}
		values[i] = v
	}

	return values, nil
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

var _ steplog.MetricsCollector = (*MetricsCollector)(nil)
