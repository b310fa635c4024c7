// Package tests holds the call recorder shared by the test suites.
package tests

import (
	"context"
	"slices"
	"strings"

	"github.com/stateforward/go-fsm"
)

// Trace records calls in order.
type Trace struct {
	calls []string
}

func (t *Trace) Record(calls ...string) {
	t.calls = append(t.calls, calls...)
}

// Action returns a function recording call.
func (t *Trace) Action(call string) func() {
	return func() {
		t.Record(call)
	}
}

func (t *Trace) Reset() {
	t.calls = t.calls[:0]
}

func (t *Trace) Calls() []string {
	return slices.Clone(t.calls)
}

func (t *Trace) Matches(expected ...string) bool {
	return slices.Equal(t.calls, expected)
}

func (t *Trace) Contains(call string) bool {
	return slices.Contains(t.calls, call)
}

// Count returns how many times call was recorded.
func (t *Trace) Count(call string) int {
	count := 0
	for _, recorded := range t.calls {
		if recorded == call {
			count++
		}
	}
	return count
}

// Steps returns an fsm.Trace recording each step as
// "<machine>.<kind>[.<state>][-><target>]" when it begins.
func (t *Trace) Steps() fsm.Trace {
	return func(_ context.Context, step fsm.Step) func() {
		var builder strings.Builder
		builder.WriteString(step.Machine)
		builder.WriteString(".")
		builder.WriteString(step.Kind)
		if step.State != "" {
			builder.WriteString(".")
			builder.WriteString(step.State)
		}
		if step.Target != "" {
			builder.WriteString("->")
			builder.WriteString(step.Target)
		}
		t.Record(builder.String())
		return nil
	}
}
