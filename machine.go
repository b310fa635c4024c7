package fsm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"
)

// key identifies the singleton of state kind T in a machine's registry.
type key[T any] struct{}

/******* Machine *******/

// Machine coordinates one state space. It owns the registry of state
// singletons and the reference to the current one. A Machine is not safe for
// concurrent use.
type Machine[M any] struct {
	id       string
	name     string
	ctx      context.Context
	logger   *slog.Logger
	trace    Trace
	policy   Policy
	reset    func()
	initial  State[M]
	registry map[any]State[M]
	current  State[M]
	storage  M
	// event is the event being dispatched, for traces.
	event      Event
	transiting bool
	context    Context[M]
}

// New creates the machine tagged M whose initial state kind is T. The
// singleton of T is created here, every other state kind on first use.
func New[M any, T any, PT interface {
	*T
	State[M]
}](options ...Option) *Machine[M] {
	config := config{
		ctx: context.Background(),
	}
	for _, option := range options {
		option(&config)
	}
	if config.id == "" {
		config.id = newId()
	}
	if config.name == "" {
		config.name = reflect.TypeOf((*M)(nil)).Elem().Name()
	}
	machine := &Machine[M]{
		id:       config.id,
		name:     config.name,
		ctx:      config.ctx,
		logger:   config.logger,
		trace:    config.trace,
		policy:   config.policy,
		reset:    config.reset,
		registry: map[any]State[M]{},
	}
	machine.context.machine = machine
	machine.initial = instance[T, PT](machine)
	return machine
}

func newId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (machine *Machine[M]) Id() string {
	if machine == nil {
		return ""
	}
	return machine.id
}

func (machine *Machine[M]) Name() string {
	if machine == nil {
		return ""
	}
	return machine.name
}

// Storage returns the machine's extended state: data shared by every state
// kind that survives transitions and StateList resets.
func (machine *Machine[M]) Storage() *M {
	return &machine.storage
}

func (machine *Machine[M]) Policy() Policy {
	return machine.policy
}

// Current returns the current state, nil before the machine is started.
func (machine *Machine[M]) Current() State[M] {
	return machine.current
}

// State returns the name of the current state kind.
func (machine *Machine[M]) State() string {
	if machine == nil || machine.current == nil {
		return ""
	}
	return NameOf(machine.current)
}

// SetInitialState makes the initial state current without running its entry
// action.
func (machine *Machine[M]) SetInitialState() {
	machine.current = machine.initial
}

// Enter runs the entry action of the current state.
func (machine *Machine[M]) Enter() {
	if machine.current == nil {
		machine.fail(ErrNotStarted)
	}
	end := machine.step(StepEnter, machine.current, nil)
	machine.entry(machine.current)
	end()
}

// Start makes the initial state current and enters it. Starting a running
// machine enters the initial state again without exiting the current one.
func (machine *Machine[M]) Start() {
	end := machine.step(StepStart, machine.current, machine.initial)
	if machine.debug() {
		machine.logger.DebugContext(machine.ctx, "start", "machine", machine.name, "id", machine.id, "initial", NameOf(machine.initial))
	}
	machine.SetInitialState()
	machine.Enter()
	end()
}

// Reset runs the hook configured with WithReset. It never touches the
// current state; reinitialize state values with a StateList.
func (machine *Machine[M]) Reset() {
	if machine.reset == nil {
		return
	}
	end := machine.step(StepReset, machine.current, nil)
	machine.reset()
	end()
}

// Dispatch hands event to the current state and returns once the reaction,
// and every transition it requested, has completed.
func (machine *Machine[M]) Dispatch(event Event) {
	if machine.current == nil {
		machine.fail(ErrNotStarted)
	}
	if machine.transiting {
		machine.fail(ErrReentrantDispatch)
	}
	previous := machine.event
	machine.event = event
	end := machine.step(StepDispatch, machine.current, nil)
	if machine.debug() {
		machine.logger.DebugContext(machine.ctx, "dispatch", "machine", machine.name, "state", machine.State(), "event", NameOf(event))
	}
	machine.current.React(&machine.context, event)
	end()
	machine.event = previous
}

func (machine *Machine[M]) transit(target State[M], action func()) {
	if machine.transiting {
		machine.fail(ErrReentrantTransit)
	}
	source := machine.current
	end := machine.step(StepTransit, source, target)
	if machine.debug() {
		machine.logger.DebugContext(machine.ctx, "transit", "machine", machine.name, "from", NameOf(source), "to", NameOf(target))
	}
	machine.transiting = true
	machine.exit(source)
	if action != nil {
		endAction := machine.step(StepAction, source, target)
		action()
		endAction()
	}
	machine.current = target
	machine.transiting = false
	machine.entry(target)
	end()
}

func (machine *Machine[M]) entry(state State[M]) {
	if !machine.policy.entry() {
		return
	}
	enterer, ok := state.(Enterer[M])
	if !ok {
		return
	}
	end := machine.step(StepEntry, state, nil)
	enterer.Entry(&machine.context)
	end()
}

func (machine *Machine[M]) exit(state State[M]) {
	if !machine.policy.exit() {
		return
	}
	exiter, ok := state.(Exiter[M])
	if !ok {
		return
	}
	end := machine.step(StepExit, state, nil)
	exiter.Exit(&machine.context)
	end()
}

var noop = func() {}

func (machine *Machine[M]) step(kind string, state, target State[M]) func() {
	if machine.trace == nil {
		return noop
	}
	step := Step{
		Kind:    kind,
		Machine: machine.name,
		Id:      machine.id,
		Event:   machine.event,
	}
	if state != nil {
		step.State = NameOf(state)
	}
	if target != nil {
		step.Target = NameOf(target)
	}
	if end := machine.trace(machine.ctx, step); end != nil {
		return end
	}
	return noop
}

func (machine *Machine[M]) debug() bool {
	return machine.logger != nil && machine.logger.Enabled(machine.ctx, slog.LevelDebug)
}

func (machine *Machine[M]) fail(err error) {
	err = fmt.Errorf("machine %s: %w", machine.name, err)
	logger := machine.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(machine.ctx, err.Error(), "id", machine.id, "state", machine.State())
	panic(err)
}

/******* Registry *******/

func instance[T any, PT interface {
	*T
	State[M]
}, M any](machine *Machine[M]) PT {
	if state, ok := machine.registry[key[T]{}]; ok {
		return state.(PT)
	}
	state := PT(new(T))
	initialize(state)
	machine.registry[key[T]{}] = state
	return state
}

func initialize(state any) {
	if initializer, ok := state.(Initializer); ok {
		initializer.Init()
	}
}

// StateOf returns the singleton of state kind T, creating it on first use.
func StateOf[T any, PT interface {
	*T
	State[M]
}, M any](machine *Machine[M]) PT {
	return instance[T, PT](machine)
}

// IsInState reports whether the singleton of T is the current state.
func IsInState[T any, PT interface {
	*T
	State[M]
}, M any](machine *Machine[M]) bool {
	state, ok := machine.registry[key[T]{}]
	return ok && machine.current != nil && state == machine.current
}

/******* Transitions *******/

// Transit moves the machine of ctx to state kind T: exit the current state,
// make T current, enter T.
func Transit[T any, PT interface {
	*T
	State[M]
}, M any](ctx *Context[M]) {
	ctx.machine.transit(instance[T, PT](ctx.machine), nil)
}

// TransitWith is Transit with action run between exit and the reassignment.
// The action gets no context: it cannot transit, and dispatching into the
// machine from it panics with ErrReentrantDispatch.
func TransitWith[T any, PT interface {
	*T
	State[M]
}, M any](ctx *Context[M], action func()) {
	ctx.machine.transit(instance[T, PT](ctx.machine), action)
}

// TransitIf runs TransitWith only when condition returns true, and reports
// whether it did. A nil condition always holds.
func TransitIf[T any, PT interface {
	*T
	State[M]
}, M any](ctx *Context[M], action func(), condition func() bool) bool {
	if condition != nil && !condition() {
		return false
	}
	ctx.machine.transit(instance[T, PT](ctx.machine), action)
	return true
}
