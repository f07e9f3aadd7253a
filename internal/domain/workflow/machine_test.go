package workflow

import (
	"errors"
	"testing"
	"time"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateAccepted, false},
		{StateAcquiring, false},
		{StateExtracting, false},
		{StateNormalizing, false},
		{StateSucceeded, true},
		{StateDegradedSuccess, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateAccepted, true},
		{"valid state", StateDegradedSuccess, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateAccepted)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	if config2 := builder.Configure(StateAccepted); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAccepted).
		Permit(TriggerAcquire, StateAcquiring)

	machine := builder.Build(StateAccepted)

	err := machine.Fire(TriggerSucceed)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StateAccepted {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateAccepted, machine.State())
	}
	if len(machine.History()) != 0 {
		t.Errorf("failed Fire() should not be recorded, got %v", machine.History())
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAccepted).
		Permit(TriggerAcquire, StateAcquiring)

	machine1 := builder.Build(StateAccepted)
	machine2 := builder.Build(StateAccepted)

	if err := machine1.Fire(TriggerAcquire); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if machine2.State() != StateAccepted {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StateAccepted)
	}
}

func TestRequestMachine_SuccessPath(t *testing.T) {
	machine := NewRequestMachine()

	steps := []struct {
		trigger       Trigger
		expectedState State
	}{
		{TriggerAcquire, StateAcquiring},
		{TriggerExtract, StateExtracting},
		{TriggerNormalize, StateNormalizing},
		{TriggerSucceed, StateSucceeded},
	}

	for i, step := range steps {
		if err := machine.Fire(step.trigger); err != nil {
			t.Errorf("Step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}
		if machine.State() != step.expectedState {
			t.Errorf("Step %d: State after Fire(%v) = %v, want %v", i, step.trigger, machine.State(), step.expectedState)
		}
	}

	if !machine.State().IsTerminal() {
		t.Error("Final state should be terminal")
	}
	if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
		t.Errorf("Terminal state should have 0 permitted triggers, got %d", len(triggers))
	}
}

func TestRequestMachine_DegradedPath(t *testing.T) {
	machine := NewRequestMachine()

	for _, trig := range []Trigger{TriggerAcquire, TriggerExtract, TriggerNormalize, TriggerDegrade} {
		if err := machine.Fire(trig); err != nil {
			t.Fatalf("Fire(%v) failed: %v", trig, err)
		}
	}

	if machine.State() != StateDegradedSuccess {
		t.Errorf("State = %v, want %v", machine.State(), StateDegradedSuccess)
	}
}

func TestRequestMachine_FailFromEveryActiveState(t *testing.T) {
	paths := map[State][]Trigger{
		StateAccepted:    nil,
		StateAcquiring:   {TriggerAcquire},
		StateExtracting:  {TriggerAcquire, TriggerExtract},
		StateNormalizing: {TriggerAcquire, TriggerExtract, TriggerNormalize},
	}

	for from, path := range paths {
		t.Run(string(from), func(t *testing.T) {
			machine := NewRequestMachine()
			for _, trig := range path {
				if err := machine.Fire(trig); err != nil {
					t.Fatalf("Fire(%v) failed: %v", trig, err)
				}
			}
			if !machine.CanFire(TriggerFail) {
				t.Fatalf("FAIL should be permitted from %v", from)
			}
			if err := machine.Fire(TriggerFail); err != nil {
				t.Fatalf("Fire(FAIL) failed: %v", err)
			}
			if machine.State() != StateFailed {
				t.Errorf("State = %v, want %v", machine.State(), StateFailed)
			}
		})
	}
}

func TestRequestMachine_NoSkippingStages(t *testing.T) {
	machine := NewRequestMachine()

	if machine.CanFire(TriggerSucceed) {
		t.Error("SUCCEED must not be permitted before normalization")
	}
	if err := machine.Fire(TriggerExtract); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(EXTRACT) from ACCEPTED error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestRequestMachine_HistoryAndElapsed(t *testing.T) {
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		now := start.Add(time.Duration(ticks) * 100 * time.Millisecond)
		ticks++
		return now
	}

	machine := NewRequestMachine(WithClock(clock))
	if machine.Elapsed() != 0 {
		t.Errorf("Elapsed() before any transition = %v, want 0", machine.Elapsed())
	}

	for _, trig := range []Trigger{TriggerAcquire, TriggerExtract, TriggerNormalize, TriggerSucceed} {
		if err := machine.Fire(trig); err != nil {
			t.Fatalf("Fire(%v) failed: %v", trig, err)
		}
	}

	history := machine.History()
	if len(history) != 4 {
		t.Fatalf("History() length = %d, want 4", len(history))
	}
	if history[0].From != StateAccepted || history[3].To != StateSucceeded {
		t.Errorf("History() endpoints = %v -> %v", history[0].From, history[3].To)
	}
	if got := machine.Elapsed(); got != 400*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 400ms", got)
	}
}
