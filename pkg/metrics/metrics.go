// Package metrics counts machine activity with Prometheus collectors.
package metrics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/stateforward/go-fsm"
)

const namespace = "fsm"

// Metrics holds the collectors fed by Trace.
type Metrics struct {
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	transitions      *prometheus.CounterVec
	state            *prometheus.GaugeVec
	resets           *prometheus.CounterVec

	registry *prometheus.Registry
	// current is the state last reported active per machine.
	current map[string]string
}

// New creates the collectors and registers them on a dedicated registry.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		current:  map[string]string{},

		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of events dispatched",
			},
			[]string{"machine", "state", "event"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of event dispatch in seconds",
				Buckets:   []float64{.000001, .00001, .0001, .001, .01, .1},
			},
			[]string{"machine"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of transitions taken",
			},
			[]string{"machine", "source", "target"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "state",
				Help:      "Current state of machines (1=current, 0=not current)",
			},
			[]string{"machine", "state"},
		),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resets_total",
				Help:      "Total number of machine and state resets",
			},
			[]string{"machine", "state"},
		),
	}
	for _, collector := range []prometheus.Collector{
		m.dispatches,
		m.dispatchDuration,
		m.transitions,
		m.state,
		m.resets,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) setState(machine, state string) {
	if previous, ok := m.current[machine]; ok {
		if previous == state {
			return
		}
		m.state.WithLabelValues(machine, previous).Set(0)
	}
	m.current[machine] = state
	m.state.WithLabelValues(machine, state).Set(1)
}

// Trace returns the fsm.Trace feeding the collectors.
func (m *Metrics) Trace() fsm.Trace {
	return func(_ context.Context, step fsm.Step) func() {
		switch step.Kind {
		case fsm.StepStart:
			m.setState(step.Machine, step.Target)
		case fsm.StepDispatch:
			m.dispatches.WithLabelValues(step.Machine, step.State, fsm.NameOf(step.Event)).Inc()
			start := time.Now()
			return func() {
				m.dispatchDuration.WithLabelValues(step.Machine).Observe(time.Since(start).Seconds())
			}
		case fsm.StepTransit:
			m.transitions.WithLabelValues(step.Machine, step.State, step.Target).Inc()
			m.setState(step.Machine, step.Target)
		case fsm.StepReset:
			if step.State != "" {
				m.resets.WithLabelValues(step.Machine, step.State).Inc()
			}
		}
		return nil
	}
}

// Write writes every collected metric in the Prometheus text format.
func (m *Metrics) Write(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
