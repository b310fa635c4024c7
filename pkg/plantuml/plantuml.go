// Package plantuml renders the transitions a machine actually took as a
// PlantUML state diagram. Transitions in this module are code, not data, so
// the diagram is built from a Recorder attached to the machine's trace.
package plantuml

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/pkg/set"
)

type transition struct {
	source string
	target string
	event  string
	action bool
}

type diagram struct {
	initial     string
	states      set.Set[string]
	transitions set.Set[transition]
	// open is the transit awaiting its action step, if any.
	open *transition
}

// Recorder collects the states and transitions of every machine it traces.
type Recorder struct {
	machines set.Set[string]
	diagrams map[string]*diagram
}

func NewRecorder() *Recorder {
	return &Recorder{
		diagrams: map[string]*diagram{},
	}
}

func (recorder *Recorder) diagram(machine string) *diagram {
	d, ok := recorder.diagrams[machine]
	if !ok {
		d = &diagram{}
		recorder.diagrams[machine] = d
		recorder.machines.Add(machine)
	}
	return d
}

// Trace returns the fsm.Trace feeding the recorder.
func (recorder *Recorder) Trace() fsm.Trace {
	return func(_ context.Context, step fsm.Step) func() {
		d := recorder.diagram(step.Machine)
		switch step.Kind {
		case fsm.StepStart:
			d.initial = step.Target
			d.states.Add(step.Target)
		case fsm.StepDispatch, fsm.StepEnter:
			d.states.Add(step.State)
		case fsm.StepTransit:
			d.states.Add(step.State, step.Target)
			d.open = &transition{source: step.State, target: step.Target, event: fsm.NameOf(step.Event)}
			return func() {
				if d.open != nil {
					d.transitions.Add(*d.open)
					d.open = nil
				}
			}
		case fsm.StepAction:
			if d.open != nil {
				d.open.action = true
			}
		}
		return nil
	}
}

// Machines returns the names of the recorded machines in order of first
// appearance.
func (recorder *Recorder) Machines() []string {
	return recorder.machines.Slice()
}

func id(name string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_", "/", "_").Replace(name)
}

func generateTransition(builder *strings.Builder, transition transition) {
	label := transition.event
	if transition.action {
		label = fmt.Sprintf("%s / action", label)
	}
	if label != "" {
		label = fmt.Sprintf(" : %s", strings.TrimSpace(label))
	}
	fmt.Fprintf(builder, "%s ----> %s%s\n", id(transition.source), id(transition.target), label)
}

// Generate writes the diagram of machine.
func (recorder *Recorder) Generate(writer io.Writer, machine string) error {
	d, ok := recorder.diagrams[machine]
	if !ok {
		return fmt.Errorf("no transitions recorded for machine %q", machine)
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "@startuml %s\n", id(machine))
	for state := range d.states.Items() {
		fmt.Fprintf(&builder, "state %s\n", id(state))
	}
	if d.initial != "" {
		fmt.Fprintf(&builder, "[*] ----> %s\n", id(d.initial))
	}
	for transition := range d.transitions.Items() {
		generateTransition(&builder, transition)
	}
	fmt.Fprintln(&builder, "@enduml")
	_, err := io.WriteString(writer, builder.String())
	return err
}
