package workflow

import "time"

// StateMachine tracks the current state of a request and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger

	// History returns the transitions taken so far, oldest first
	History() []Transition

	// Elapsed returns the time from the initial state to the last transition
	Elapsed() time.Duration
}

// Transition records one state change
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	At      time.Time
}
