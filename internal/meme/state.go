package meme

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned by Machine.Fire for events missing from the
// transition table.
var ErrUnknownEvent = errors.New("unknown event")

// State is the control state of a meme session.
type State int

const (
	// StateIdle means nothing has been generated yet: only Generate is
	// enabled.
	StateIdle State = iota
	// StateRendered means the meme is composited: Clear, Read and the voice
	// selector are enabled, Generate is not.
	StateRendered
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// Event is an input to the state machine.
type Event int

const (
	// EventSubmit is the generate action.
	EventSubmit Event = iota
	// EventReset is the clear action.
	EventReset
	// EventImageLoaded fires when a new source image finished decoding.
	EventImageLoaded
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventReset:
		return "reset"
	case EventImageLoaded:
		return "image-loaded"
	default:
		return "unknown"
	}
}

// Enablement is the set of controls enabled in a state.
type Enablement struct {
	Submit      bool
	Reset       bool
	Read        bool
	VoiceSelect bool
}

// Enablement returns the control flags for s. Unknown states enable
// nothing.
func (s State) Enablement() Enablement {
	switch s {
	case StateIdle:
		return Enablement{Submit: true}
	case StateRendered:
		return Enablement{Reset: true, Read: true, VoiceSelect: true}
	default:
		return Enablement{}
	}
}

// TransitionListener is called after every transition, including
// self-transitions.
type TransitionListener func(from State, ev Event, to State)

// Machine is the control state machine. Its table is total over the known
// states and events: every pair maps to exactly one next state. It is not
// safe for concurrent use; the controller drives it from a single event loop.
type Machine struct {
	current     State
	transitions map[State]map[Event]State
	listeners   []TransitionListener
}

// NewMachine returns a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{
		current: StateIdle,
		transitions: map[State]map[Event]State{
			StateIdle: {
				EventSubmit:      StateRendered,
				EventReset:       StateIdle,
				EventImageLoaded: StateIdle,
			},
			StateRendered: {
				EventSubmit:      StateRendered,
				EventReset:       StateIdle,
				EventImageLoaded: StateRendered,
			},
		},
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Enablement returns the control flags of the current state.
func (m *Machine) Enablement() Enablement {
	return m.current.Enablement()
}

// Next returns the state ev would lead to without transitioning.
func (m *Machine) Next(ev Event) (State, error) {
	to, ok := m.transitions[m.current][ev]
	if !ok {
		return m.current, fmt.Errorf("%w %s in state %s", ErrUnknownEvent, ev, m.current)
	}
	return to, nil
}

// Fire applies ev and returns the new state.
func (m *Machine) Fire(ev Event) (State, error) {
	to, err := m.Next(ev)
	if err != nil {
		return m.current, err
	}

	from := m.current
	m.current = to
	for _, fn := range m.listeners {
		fn(from, ev, to)
	}
	return to, nil
}

// OnTransition registers a listener.
func (m *Machine) OnTransition(fn TransitionListener) {
	m.listeners = append(m.listeners, fn)
}

// States lists every state in the table.
func States() []State {
	return []State{StateIdle, StateRendered}
}

// Events lists every event the table handles.
func Events() []Event {
	return []Event{EventSubmit, EventReset, EventImageLoaded}
}
