// Package metrics records resolution activity as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inject"

// Outcome labels for the resolutions counter.
const (
	OutcomeHit     = "hit"     // served from the singleton cache
	OutcomeCreated = "created" // a new instance was constructed
	OutcomeError   = "error"
)

// Recorder holds the collectors for one injector. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	resolutions   *prometheus.CounterVec
	constructions *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// New creates the collectors, labelled with the injector id, and registers
// them with reg. Several injectors may share one registerer.
func New(reg prometheus.Registerer, injectorID string) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("metrics: registerer cannot be nil")
	}

	constLabels := prometheus.Labels{"injector": injectorID}

	r := &Recorder{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "resolutions_total",
				Help:        "Total number of resolutions by interface, lifetime and outcome",
				ConstLabels: constLabels,
			},
			[]string{"interface", "lifetime", "outcome"},
		),
		constructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "constructions_total",
				Help:        "Total number of constructor invocations by interface",
				ConstLabels: constLabels,
			},
			[]string{"interface"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "resolution_duration_seconds",
				Help:        "Time spent resolving an interface, including its dependencies",
				ConstLabels: constLabels,
				Buckets:     []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"interface"},
		),
	}

	for _, c := range []prometheus.Collector{r.resolutions, r.constructions, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: failed to register collector: %w", err)
		}
	}

	return r, nil
}

// Resolved records one finished resolution.
func (r *Recorder) Resolved(iface, lifetime, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(iface, lifetime, outcome).Inc()
	r.duration.WithLabelValues(iface).Observe(elapsed.Seconds())
}

// Constructed records one constructor invocation.
func (r *Recorder) Constructed(iface string) {
	if r == nil {
		return
	}
	r.constructions.WithLabelValues(iface).Inc()
}
