package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerAcquire   Trigger = "ACQUIRE"
	TriggerExtract   Trigger = "EXTRACT"
	TriggerNormalize Trigger = "NORMALIZE"
	TriggerSucceed   Trigger = "SUCCEED"
	TriggerDegrade   Trigger = "DEGRADE"
	TriggerFail      Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
