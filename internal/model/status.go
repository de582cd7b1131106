package model

// Status is the run-time state of a job within one run.
//
// Transitions: Pending → Ready → Running → Succeeded | Failed, with Skipped
// reachable from Pending when any dependency fails.
type Status string

const (
	// transient states
	StatusPending Status = "Pending"
	StatusReady   Status = "Ready"
	StatusRunning Status = "Running"

	// terminal states
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusSkipped   Status = "Skipped"
)

// IsTerminal reports whether a job in this state will never transition again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// FailureKind distinguishes why a job failed, for operator triage. The
// external gate only cares about the verdict; operators care whether the
// toolchain rejected the change or the infrastructure fell over.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureProvision FailureKind = "provision"
	FailureStep      FailureKind = "step"
	FailureTimeout   FailureKind = "timeout"
	FailureInfra     FailureKind = "infrastructure"
)
