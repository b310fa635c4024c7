package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/examples/board"
	"github.com/stateforward/go-fsm/pkg/telemetry"
)

func TestTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())

	b := board.New(fsm.WithTrace(telemetry.New(provider)), fsm.WithId("board-1"))
	b.Start()
	b.Dispatch(board.Telecommand{TC: board.TCActivate})

	spans := recorder.Ended()
	names := make([]string, 0, len(spans))
	for _, span := range spans {
		names = append(names, span.Name())
	}
	// spans end innermost first
	assert.Equal(t, []string{
		"fsm.entry", "fsm.enter", "fsm.start",
		"fsm.entry", "fsm.transit", "fsm.dispatch",
	}, names)

	dispatch := spans[5]
	transit := spans[4]
	entry := spans[3]
	assert.False(t, dispatch.Parent().IsValid(), "dispatch is a root span")
	assert.Equal(t, dispatch.SpanContext().SpanID(), transit.Parent().SpanID())
	assert.Equal(t, transit.SpanContext().SpanID(), entry.Parent().SpanID())
	assert.Equal(t, dispatch.SpanContext().TraceID(), entry.SpanContext().TraceID())

	attributes := map[string]string{}
	for _, attribute := range transit.Attributes() {
		attributes[string(attribute.Key)] = attribute.Value.Emit()
	}
	assert.Equal(t, "board", attributes["fsm.machine"])
	assert.Equal(t, "board-1", attributes["fsm.machine.id"])
	assert.Equal(t, "STANDBY", attributes["fsm.state"])
	assert.Equal(t, "ACTIVE", attributes["fsm.target"])
	assert.Equal(t, "TC1", attributes["fsm.event"])
}

func TestTraceUnwindsAfterPanic(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	trace := telemetry.Trace(provider.Tracer("test"))

	end := trace(context.Background(), fsm.Step{Kind: fsm.StepDispatch, Machine: "m"})
	trace(context.Background(), fsm.Step{Kind: fsm.StepTransit, Machine: "m"})
	// the transit span is never ended, the dispatch span still pops it
	end()
	trace(context.Background(), fsm.Step{Kind: fsm.StepDispatch, Machine: "m"})()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.False(t, spans[1].Parent().IsValid())
}

func TestAttributes(t *testing.T) {
	attributes := telemetry.Attributes(fsm.Step{Kind: fsm.StepStart, Machine: "m", Id: "1", Target: "s0"})
	assert.ElementsMatch(t, []string{"fsm.machine", "fsm.machine.id", "fsm.target"}, keys(attributes))

	attributes = telemetry.Attributes(fsm.Step{Kind: fsm.StepDispatch, Machine: "m", Id: "1", State: "s0", Event: board.Clock{}})
	assert.ElementsMatch(t, []string{"fsm.machine", "fsm.machine.id", "fsm.state", "fsm.event", "fsm.event.kind"}, keys(attributes))
}

func keys(attributes []attribute.KeyValue) []string {
	var keys []string
	for _, kv := range attributes {
		keys = append(keys, string(kv.Key))
	}
	return keys
}

func BenchmarkTrace(b *testing.B) {
	machine := board.New(fsm.WithTrace(telemetry.New(noop.NewTracerProvider())))
	machine.Start()
	var tc1, tc2 fsm.Event = board.Telecommand{TC: board.TCActivate}, board.Telecommand{TC: board.TCFire}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		machine.Dispatch(tc1)
		machine.Dispatch(tc2)
		machine.Dispatch(tc1)
	}
}
