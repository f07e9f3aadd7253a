package workflow

// NewRequestMachine returns a machine in StateAccepted wired with the
// extraction request lifecycle:
//
//	ACCEPTED -> ACQUIRING -> EXTRACTING -> NORMALIZING -> SUCCESS | DEGRADED_SUCCESS
//
// FAIL is permitted from every non-terminal state.
func NewRequestMachine(opts ...BuilderOption) StateMachine {
	b := NewBuilder(opts...)

	b.Configure(StateAccepted).
		Permit(TriggerAcquire, StateAcquiring).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateAcquiring).
		Permit(TriggerExtract, StateExtracting).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateExtracting).
		Permit(TriggerNormalize, StateNormalizing).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateNormalizing).
		Permit(TriggerSucceed, StateSucceeded).
		Permit(TriggerDegrade, StateDegradedSuccess).
		Permit(TriggerFail, StateFailed)

	return b.Build(StateAccepted)
}
