// Package telemetry records machine lifecycle steps as OpenTelemetry spans.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stateforward/go-fsm"
)

const instrumentation = "github.com/stateforward/go-fsm"

var (
	MachineKey   = attribute.Key("fsm.machine")
	MachineIdKey = attribute.Key("fsm.machine.id")
	StateKey     = attribute.Key("fsm.state")
	TargetKey    = attribute.Key("fsm.target")
	EventKey     = attribute.Key("fsm.event")
	EventKindKey = attribute.Key("fsm.event.kind")
)

// New returns a trace using a tracer of provider, the global provider when
// provider is nil.
func New(provider trace.TracerProvider, options ...trace.TracerOption) fsm.Trace {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return Trace(provider.Tracer(instrumentation, options...))
}

// Trace returns an fsm.Trace that starts a span named "fsm.<step>" for every
// step. Steps that begin while another is open become its children, so a
// transit span holds its exit, action and entry spans. Like the machines it
// observes, the returned trace must not be shared between goroutines.
func Trace(tracer trace.Tracer) fsm.Trace {
	var stack []context.Context
	return func(ctx context.Context, step fsm.Step) func() {
		parent := ctx
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		ctx, span := tracer.Start(parent, "fsm."+step.Kind, trace.WithAttributes(Attributes(step)...))
		stack = append(stack, ctx)
		depth := len(stack)
		return func() {
			if len(stack) >= depth {
				stack = stack[:depth-1]
			}
			span.End()
		}
	}
}

// Attributes returns the span attributes of step.
func Attributes(step fsm.Step) []attribute.KeyValue {
	attributes := []attribute.KeyValue{
		MachineKey.String(step.Machine),
		MachineIdKey.String(step.Id),
	}
	if step.State != "" {
		attributes = append(attributes, StateKey.String(step.State))
	}
	if step.Target != "" {
		attributes = append(attributes, TargetKey.String(step.Target))
	}
	if step.Event != nil {
		attributes = append(attributes,
			EventKey.String(fsm.NameOf(step.Event)),
			EventKindKey.Int64(int64(step.Event.Kind())),
		)
	}
	return attributes
}
