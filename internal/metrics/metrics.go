// Package metrics exposes Prometheus instrumentation for link stores and
// the variant enumerator.
//
// A nil *Recorder is valid and records nothing, so packages can accept one
// unconditionally.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder holds the collectors for one process.
type Recorder struct {
	gatherer prometheus.Gatherer

	linksCreated *prometheus.CounterVec
	linksReused  *prometheus.CounterVec
	variants     prometheus.Counter
	enumeration  prometheus.Histogram
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r, err := NewRecorderWith(reg, reg)
	if err != nil {
		// A fresh registry cannot hold conflicting collectors.
		panic(err)
	}
	return r
}

// NewRecorderWith registers the collectors on reg and gathers from g.
func NewRecorderWith(reg prometheus.Registerer, g prometheus.Gatherer) (*Recorder, error) {
	r := &Recorder{
		gatherer: g,
		linksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doublets",
			Name:      "links_created_total",
			Help:      "Links newly created by get-or-create or point creation.",
		}, []string{"backend"}),
		linksReused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doublets",
			Name:      "links_reused_total",
			Help:      "Get-or-create calls answered by an existing link.",
		}, []string{"backend"}),
		variants: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doublets",
			Name:      "variants_total",
			Help:      "Variant roots returned by the enumerator.",
		}),
		enumeration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "doublets",
			Name:      "enumeration_seconds",
			Help:      "Wall time of top-level enumerations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}

	for _, c := range []prometheus.Collector{r.linksCreated, r.linksReused, r.variants, r.enumeration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// LinkCreated counts a newly stored link.
func (r *Recorder) LinkCreated(backend string) {
	if r == nil {
		return
	}
	r.linksCreated.WithLabelValues(backend).Inc()
}

// LinkReused counts a get-or-create answered by an existing link.
func (r *Recorder) LinkReused(backend string) {
	if r == nil {
		return
	}
	r.linksReused.WithLabelValues(backend).Inc()
}

// Enumerated records one finished top-level enumeration.
func (r *Recorder) Enumerated(variants int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.variants.Add(float64(variants))
	r.enumeration.Observe(elapsed.Seconds())
}

// WriteText writes every gathered family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil || r.gatherer == nil {
		return nil
	}
	families, err := r.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
