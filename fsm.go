// Package fsm is a static finite state machine dispatch core.
//
// A machine has exactly one current state. Events are dispatched
// synchronously to that state's React method, which may move the machine to
// another state with Transit, TransitWith or TransitIf. Every transition runs
// exit, the optional action, the reassignment of the current state and entry,
// in that order.
//
// State kinds are Go types. A machine is identified by a tag type M, which
// also holds the machine's extended state, and a state kind belongs to M when
// its pointer implements State[M], so the compiler rejects transitions and
// accessors that mix machines:
//
//	type Board struct{}
//
//	type Standby struct{}
//
//	func (s *Standby) React(ctx *fsm.Context[Board], event fsm.Event) {
//		switch event := event.(type) {
//		case Telecommand:
//			if event.TC == 1 {
//				fsm.Transit[Active](ctx)
//			}
//		}
//	}
//
//	board := fsm.New[Board, Standby]()
//	board.Start()
//	board.Dispatch(Telecommand{TC: 1})
package fsm

import (
	"context"
	"errors"
	"reflect"
)

/******* Errors *******/

var (
	ErrNotStarted        = errors.New("machine has no current state")
	ErrReentrantDispatch = errors.New("dispatch while a transition is in progress")
	ErrReentrantTransit  = errors.New("transit while a transition is in progress")
)

/******* Event *******/

// Event is the dispatch argument. Kind identifies the event family, see the
// kinds package.
type Event interface {
	Kind() uint64
}

/******* State *******/

// State is the capability every state kind of machine M provides. The
// default branch of React is the reaction to event kinds the state does not
// care about.
type State[M any] interface {
	React(ctx *Context[M], event Event)
}

// Enterer is implemented by states of M with an entry action.
type Enterer[M any] interface {
	Entry(ctx *Context[M])
}

// Exiter is implemented by states of M with an exit action.
type Exiter[M any] interface {
	Exit(ctx *Context[M])
}

// Initializer is implemented by states whose default value is not the zero
// value. Init runs when the state is created and every time it is reset by a
// StateList.
type Initializer interface {
	Init()
}

// Context is handed to React, Entry and Exit. It is the only way to request
// a transition.
type Context[M any] struct {
	machine *Machine[M]
}

// Machine returns the name of the machine the state belongs to.
func (ctx *Context[M]) Machine() string {
	return ctx.machine.name
}

// Storage returns the machine's extended state, see Machine.Storage.
func (ctx *Context[M]) Storage() *M {
	return &ctx.machine.storage
}

/******* Policy *******/

// Policy selects which lifecycle hooks a machine invokes.
type Policy uint8

const (
	// Custom invokes Entry and Exit whenever a state implements them.
	Custom Policy = iota
	// Moore is entry driven: outputs are produced on entry, exit is never
	// invoked.
	Moore
	// Mealy is reaction driven: outputs are produced in React and in
	// transition actions, neither entry nor exit is invoked.
	Mealy
)

func (policy Policy) String() string {
	switch policy {
	case Moore:
		return "moore"
	case Mealy:
		return "mealy"
	default:
		return "custom"
	}
}

func (policy Policy) entry() bool {
	return policy != Mealy
}

func (policy Policy) exit() bool {
	return policy == Custom
}

/******* Trace *******/

// Step kinds reported to a Trace.
const (
	StepStart    = "start"
	StepEnter    = "enter"
	StepDispatch = "dispatch"
	StepTransit  = "transit"
	StepExit     = "exit"
	StepAction   = "action"
	StepEntry    = "entry"
	StepReset    = "reset"
)

// Step describes one lifecycle step of a machine.
type Step struct {
	Kind    string
	Machine string
	Id      string
	// State is the state the step applies to, the source for transit.
	State string
	// Target is only set for start and transit.
	Target string
	// Event is the event being dispatched, nil outside of Dispatch.
	Event Event
}

// Trace is called when a step begins and returns a function called when it
// ends.
type Trace func(ctx context.Context, step Step) func()

// Traces combines several traces. Ends are called in reverse order.
func Traces(traces ...Trace) Trace {
	return func(ctx context.Context, step Step) func() {
		ends := make([]func(), 0, len(traces))
		for _, trace := range traces {
			if trace != nil {
				ends = append(ends, trace(ctx, step))
			}
		}
		return func() {
			for i := len(ends) - 1; i >= 0; i-- {
				if ends[i] != nil {
					ends[i]()
				}
			}
		}
	}
}

/******* Names *******/

// Named lets a state or event choose the name used in traces and logs.
type Named interface {
	Name() string
}

// NameOf returns the display name of a state or event: its Name method when
// it has one, otherwise its type name without the pointer.
func NameOf(value any) string {
	if value == nil {
		return ""
	}
	if named, ok := value.(Named); ok {
		return named.Name()
	}
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
