package labeling

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts labeling activity.
type Metrics struct {
	submissions *prometheus.CounterVec
	labels      *prometheus.CounterVec
	dropped     prometheus.Counter
	navigation  *prometheus.CounterVec
	exhausted   *prometheus.CounterVec
}

// NewMetrics creates the labeling collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "submissions_total",
			Help:      "Labeling form submissions by item kind, save mode, and outcome.",
		}, []string{"kind", "mode", "outcome"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "labels_saved_total",
			Help:      "Evidence labels written by relation and label.",
		}, []string{"relation", "label"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "partial_rows_dropped_total",
			Help:      "Submitted rows discarded by partial-save reconciliation.",
		}),
		navigation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "navigation_total",
			Help:      "Back and forward moves over labeled items by outcome.",
		}, []string{"kind", "direction", "outcome"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labeling",
			Name:      "exhausted_total",
			Help:      "Next-item requests that found nothing left to label.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.submissions, m.labels, m.dropped, m.navigation, m.exhausted)
	return m
}

func (m *Metrics) submitted(kind, mode, outcome string) {
	m.submissions.WithLabelValues(kind, mode, outcome).Inc()
}

func (m *Metrics) saved(relationID int64, label *string) {
	value := "none"
	if label != nil {
		value = *label
	}
	m.labels.WithLabelValues(strconv.FormatInt(relationID, 10), value).Inc()
}

func (m *Metrics) droppedRows(n int) {
	if n > 0 {
		m.dropped.Add(float64(n))
	}
}

func (m *Metrics) navigated(kind, direction string, move Move) {
	m.navigation.WithLabelValues(kind, direction, move.Outcome).Inc()
}

func (m *Metrics) exhaustedFor(kind string) {
	m.exhausted.WithLabelValues(kind).Inc()
}
