// Package metrics holds the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "imovel"

// Result labels
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultDenied  = "denied"
	ResultError   = "error"
)

type Metrics struct {
	logins       *prometheus.CounterVec
	documents    *prometheus.CounterVec
	pages        prometheus.Histogram
	imageFetches prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Document generation requests by result.",
		}, []string{"result"}),
		pages: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_pages",
			Help:      "Pages per generated document.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		imageFetches: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_fetch_seconds",
			Help:      "Time spent fetching one remote image.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Document(result string, pages int) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.pages.Observe(float64(pages))
	}
}

func (m *Metrics) ImageFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.imageFetches.Observe(d.Seconds())
}
