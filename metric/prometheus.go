// Package metric exports decoder metrics to Prometheus.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/phrasego"
)

// Prometheus implements phrasego.MetricsCollector with Prometheus metrics.
type Prometheus struct {
	decodeLatency *prometheus.HistogramVec
	sentences     *prometheus.CounterVec
	searchWork    *prometheus.CounterVec
	nbestReturned prometheus.Histogram
	cache         *prometheus.CounterVec
	rejected      prometheus.Counter
}

var _ phrasego.MetricsCollector = (*Prometheus)(nil)

// NewPrometheus creates the collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		decodeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phrasego_decode_latency_seconds",
			Help:    "Latency of decoding one sentence",
			Buckets: prometheus.DefBuckets,
		}, []string{"algorithm", "status"}),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phrasego_sentences_total",
			Help: "Decoded sentences by outcome (found, not_found, error)",
		}, []string{"outcome"}),
		searchWork: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phrasego_search_work_total",
			Help: "Search counters summed over sentences",
		}, []string{"kind"}),
		nbestReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phrasego_nbest_returned",
			Help:    "Translations returned per n-best request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phrasego_cache_requests_total",
			Help: "Result cache lookups by result (hit, miss)",
		}, []string{"result"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phrasego_rejected_total",
			Help: "Sentences the worker pool did not accept",
		}),
	}

	reg.MustRegister(p.decodeLatency, p.sentences, p.searchWork, p.nbestReturned, p.cache, p.rejected)
	return p
}

// RecordDecode implements phrasego.MetricsCollector.
func (p *Prometheus) RecordDecode(a phrasego.Algorithm, d time.Duration, found bool, err error) {
	status := "success"
	outcome := "found"
	switch {
	case err != nil:
		status, outcome = "error", "error"
	case !found:
		outcome = "not_found"
	}
	p.decodeLatency.WithLabelValues(a.String(), status).Observe(d.Seconds())
	p.sentences.WithLabelValues(outcome).Inc()
}

// RecordSearch implements phrasego.MetricsCollector.
func (p *Prometheus) RecordSearch(s phrasego.Stats) {
	p.searchWork.WithLabelValues("hypotheses").Add(float64(s.Hypotheses))
	p.searchWork.WithLabelValues("expansions").Add(float64(s.Expansions))
	p.searchWork.WithLabelValues("batches").Add(float64(s.Batches))
	p.searchWork.WithLabelValues("pops").Add(float64(s.Pops))
	p.searchWork.WithLabelValues("recombined").Add(float64(s.Recombined))
	p.searchWork.WithLabelValues("pruned").Add(float64(s.Pruned))
	p.searchWork.WithLabelValues("discarded").Add(float64(s.Discarded))
}

// RecordNBest implements phrasego.MetricsCollector.
func (p *Prometheus) RecordNBest(_, returned int, _ time.Duration) {
	p.nbestReturned.Observe(float64(returned))
}

// RecordCache implements phrasego.MetricsCollector.
func (p *Prometheus) RecordCache(hit bool) {
	if hit {
		p.cache.WithLabelValues("hit").Inc()
	} else {
		p.cache.WithLabelValues("miss").Inc()
	}
}

// RecordRejected implements phrasego.MetricsCollector.
func (p *Prometheus) RecordRejected() {
	p.rejected.Inc()
}
