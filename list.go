package fsm

// Coordinator is the part of a machine a List drives. Every *Machine[M]
// and every List is a Coordinator.
type Coordinator interface {
	SetInitialState()
	Reset()
	Enter()
	Start()
	Dispatch(event Event)
}

var (
	_ Coordinator = (*Machine[struct{}])(nil)
	_ Coordinator = List(nil)
)

// List drives independent machines together. Each operation is applied to
// the machines in list order, each one completing before the next begins.
// The empty list does nothing.
type List []Coordinator

func NewList(machines ...Coordinator) List {
	return List(machines)
}

func (list List) SetInitialState() {
	for _, machine := range list {
		machine.SetInitialState()
	}
}

func (list List) Reset() {
	for _, machine := range list {
		machine.Reset()
	}
}

func (list List) Enter() {
	for _, machine := range list {
		machine.Enter()
	}
}

// Start sets the initial state of every machine, then enters every machine.
func (list List) Start() {
	list.SetInitialState()
	list.Enter()
}

// Dispatch broadcasts event.
func (list List) Dispatch(event Event) {
	for _, machine := range list {
		machine.Dispatch(event)
	}
}

/******* States *******/

// StateRef names one state kind of one machine for a StateList.
type StateRef struct {
	machine string
	name    string
	reset   func()
}

// Ref returns the StateRef of state kind T in machine.
func Ref[T any, PT interface {
	*T
	State[M]
}, M any](machine *Machine[M]) StateRef {
	state := instance[T, PT](machine)
	return StateRef{
		machine: machine.name,
		name:    NameOf(state),
		reset: func() {
			end := machine.step(StepReset, state, nil)
			*state = *new(T)
			initialize(state)
			end()
		},
	}
}

func (ref StateRef) Machine() string {
	return ref.machine
}

func (ref StateRef) Name() string {
	return ref.name
}

// Reset replaces the value of the state with its default value in place.
// The machine's current state is left untouched and neither exit nor entry
// runs, even when the state is current.
func (ref StateRef) Reset() {
	if ref.reset != nil {
		ref.reset()
	}
}

// StateList reinitializes a fixed set of state kinds.
type StateList []StateRef

func NewStateList(states ...StateRef) StateList {
	return StateList(states)
}

// Reset resets every listed state in order.
func (list StateList) Reset() {
	for _, state := range list {
		state.Reset()
	}
}
