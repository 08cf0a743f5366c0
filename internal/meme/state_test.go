package meme

import (
	"errors"
	"testing"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateRendered, "rendered"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		event    Event
		expected string
	}{
		{EventSubmit, "submit"},
		{EventReset, "reset"},
		{EventImageLoaded, "image-loaded"},
		{Event(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.expected {
			t.Errorf("Event.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestEnablement(t *testing.T) {
	tests := []struct {
		state    State
		expected Enablement
	}{
		{StateIdle, Enablement{Submit: true}},
		{StateRendered, Enablement{Reset: true, Read: true, VoiceSelect: true}},
		{State(99), Enablement{}},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.Enablement(); got != tt.expected {
				t.Errorf("Enablement() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestMachineTransitions(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		expected State
	}{
		{"initial", nil, StateIdle},
		{"submit", []Event{EventSubmit}, StateRendered},
		{"submit then reset", []Event{EventSubmit, EventReset}, StateIdle},
		{"reset while idle", []Event{EventReset}, StateIdle},
		{"submit twice", []Event{EventSubmit, EventSubmit}, StateRendered},
		{"image load keeps idle", []Event{EventImageLoaded}, StateIdle},
		{"image load keeps rendered", []Event{EventSubmit, EventImageLoaded}, StateRendered},
		{"cycles", []Event{EventSubmit, EventReset, EventSubmit, EventReset, EventSubmit}, StateRendered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			for _, ev := range tt.events {
				if _, err := m.Fire(ev); err != nil {
					t.Fatalf("Fire(%s) error = %v", ev, err)
				}
			}
			if m.Current() != tt.expected {
				t.Errorf("Current() = %s, want %s", m.Current(), tt.expected)
			}
		})
	}
}

func TestMachineResetRestoresInitialEnablement(t *testing.T) {
	m := NewMachine()
	initial := m.Enablement()

	if _, err := m.Fire(EventSubmit); err != nil {
		t.Fatal(err)
	}
	if m.Enablement() == initial {
		t.Fatal("submit did not change enablement")
	}
	if _, err := m.Fire(EventReset); err != nil {
		t.Fatal(err)
	}
	if m.Enablement() != initial {
		t.Errorf("after reset Enablement() = %+v, want %+v", m.Enablement(), initial)
	}
}

func TestMachineIsTotal(t *testing.T) {
	for _, s := range States() {
		for _, ev := range Events() {
			m := NewMachine()
			m.current = s
			if _, err := m.Next(ev); err != nil {
				t.Errorf("no transition for %s in %s: %v", ev, s, err)
			}
		}
	}
}

func TestMachineUnknownEvent(t *testing.T) {
	m := NewMachine()
	state, err := m.Fire(Event(42))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("Fire() error = %v, want ErrUnknownEvent", err)
	}
	if state != StateIdle || m.Current() != StateIdle {
		t.Errorf("state changed on unknown event: %s", m.Current())
	}
}

func TestMachineListeners(t *testing.T) {
	m := NewMachine()
	var seen []string
	m.OnTransition(func(from State, ev Event, to State) {
		seen = append(seen, from.String()+"-"+ev.String()+"-"+to.String())
	})

	_, _ = m.Fire(EventSubmit)
	_, _ = m.Fire(EventSubmit)
	_, _ = m.Fire(EventReset)
	_, _ = m.Fire(Event(42))

	expected := []string{
		"idle-submit-rendered",
		"rendered-submit-rendered",
		"rendered-reset-idle",
	}
	if len(seen) != len(expected) {
		t.Fatalf("listener calls = %v, want %v", seen, expected)
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("call %d = %s, want %s", i, seen[i], expected[i])
		}
	}
}
