package workflow

// State represents a stage in the lifecycle of one extraction request
type State string

const (
	StateAccepted        State = "ACCEPTED"
	StateAcquiring       State = "ACQUIRING"
	StateExtracting      State = "EXTRACTING"
	StateNormalizing     State = "NORMALIZING"
	StateSucceeded       State = "SUCCESS"
	StateDegradedSuccess State = "DEGRADED_SUCCESS"
	StateFailed          State = "FAILED"
)

var validStates = map[State]bool{
	StateAccepted:        true,
	StateAcquiring:       true,
	StateExtracting:      true,
	StateNormalizing:     true,
	StateSucceeded:       true,
	StateDegradedSuccess: true,
	StateFailed:          true,
}

var terminalStates = map[State]bool{
	StateSucceeded:       true,
	StateDegradedSuccess: true,
	StateFailed:          true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known request state
func (s State) IsValid() bool {
	return validStates[s]
}
