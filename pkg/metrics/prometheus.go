// Package metrics provides Prometheus metrics for the plantilla validation pipeline.
package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Label values for the layer label.
const (
	LayerSchema = "schema"
	LayerModel  = "model"
)

// Manager manages all Prometheus metrics for the validation pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Validation outcomes
	entitiesAccepted *prometheus.CounterVec
	entitiesRejected *prometheus.CounterVec
	idsAssigned      *prometheus.CounterVec
	validationTime   *prometheus.HistogramVec

	// Boundary input
	documentsDecoded *prometheus.CounterVec
	decodeErrors     *prometheus.CounterVec

	// Derived operations
	penaltiesRecorded prometheus.Counter
	outcomes          *prometheus.CounterVec

	// Batch processing
	batchWorkers prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plantilla",
		subsystem:        "validation",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Default returns the process-wide manager backed by the custom registry.
func Default() *Manager {
	return globalManager
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.entitiesAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entities_accepted_total",
		Help:        "Entities that passed validation, by layer and entity",
		ConstLabels: m.customLabels,
	}, []string{"layer", "entity"})

	m.entitiesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entities_rejected_total",
		Help:        "Entities rejected by validation, by layer, entity and error kind",
		ConstLabels: m.customLabels,
	}, []string{"layer", "entity", "kind"})

	m.idsAssigned = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ids_assigned_total",
		Help:        "Identifiers drawn from the entity sequences",
		ConstLabels: m.customLabels,
	}, []string{"entity"})

	m.validationTime = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duration_milliseconds",
		Help:        "Time spent turning one document into an entity",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"entity"})

	m.documentsDecoded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_decoded_total",
		Help:        "Documents read from input files, by format",
		ConstLabels: m.customLabels,
	}, []string{"format"})

	m.decodeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "decode_errors_total",
		Help:        "Input files that could not be decoded, by format",
		ConstLabels: m.customLabels,
	}, []string{"format"})

	m.penaltiesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "penalties_recorded_total",
		Help:        "Penalty shootouts recorded on matches",
		ConstLabels: m.customLabels,
	})

	m.outcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_outcomes_total",
		Help:        "Computed match outcomes for the tracked team",
		ConstLabels: m.customLabels,
	}, []string{"outcome"})

	m.batchWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_workers",
		Help:        "Concurrency limit of the current batch",
		ConstLabels: m.customLabels,
	})
}

// RecordAccepted counts an entity that passed validation at layer.
func (m *Manager) RecordAccepted(layer, entity string) {
	if !m.enabled {
		return
	}
	m.entitiesAccepted.WithLabelValues(layer, entity).Inc()
}

// RecordRejected counts an entity rejected at layer with the given error kind.
func (m *Manager) RecordRejected(layer, entity, kind string) {
	if !m.enabled {
		return
	}
	m.entitiesRejected.WithLabelValues(layer, entity, kind).Inc()
}

// RecordIDAssigned counts an auto-assigned identifier.
func (m *Manager) RecordIDAssigned(entity string) {
	if !m.enabled {
		return
	}
	m.idsAssigned.WithLabelValues(entity).Inc()
}

// RecordValidationLatency records the time to build one entity.
func (m *Manager) RecordValidationLatency(entity string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.validationTime.WithLabelValues(entity).Observe(latencyMs)
}

// RecordDocuments counts decoded documents of a format.
func (m *Manager) RecordDocuments(format string, n int) {
	if !m.enabled {
		return
	}
	m.documentsDecoded.WithLabelValues(format).Add(float64(n))
}

// RecordDecodeError counts a file that failed to decode.
func (m *Manager) RecordDecodeError(format string) {
	if !m.enabled {
		return
	}
	m.decodeErrors.WithLabelValues(format).Inc()
}

// RecordPenalties counts a recorded shootout.
func (m *Manager) RecordPenalties() {
	if !m.enabled {
		return
	}
	m.penaltiesRecorded.Inc()
}

// RecordOutcome counts a computed outcome; "unknown" when the side is unset.
func (m *Manager) RecordOutcome(outcome string) {
	if !m.enabled {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// UpdateBatchWorkers sets the batch concurrency gauge.
func (m *Manager) UpdateBatchWorkers(n int) {
	if !m.enabled {
		return
	}
	m.batchWorkers.Set(float64(n))
}

// Sample is one flattened counter or gauge value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers the manager's registry and returns its counters and
// gauges sorted by name and labels. Histograms report their sample count.
func (m *Manager) Snapshot() ([]Sample, error) {
	if m.gatherer == nil {
		return nil, ErrObserveFailed
	}
	families, err := m.gatherer.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), m.namespace+"_") {
			continue
		}
		for _, metric := range fam.GetMetric() {
			out = append(out, Sample{
				Name:   fam.GetName(),
				Labels: formatLabels(metric.GetLabel()),
				Value:  sampleValue(fam.GetType(), metric),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func sampleValue(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
