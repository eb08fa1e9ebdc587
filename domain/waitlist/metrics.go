package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type serviceMetrics struct {
	joins       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// newServiceMetrics registers on reg when given; a nil reg keeps the counters local.
func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	m := &serviceMetrics{
		joins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_joins_total",
				Help: "Waitlist join attempts by result.",
			},
			[]string{"result"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_status_transitions_total",
				Help: "Accepted waitlist status transitions.",
			},
			[]string{"from", "to"},
		),
	}

	if reg != nil {
		m.joins = registerCounterVec(reg, m.joins)
		m.transitions = registerCounterVec(reg, m.transitions)
	}

	return m
}

func registerCounterVec(reg prometheus.Registerer, cv *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(cv); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return cv
}
