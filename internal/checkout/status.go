package checkout

// Status of a single checkout attempt.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusReviewing  Status = "REVIEWING"
	StatusProcessing Status = "PROCESSING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether from -> to is a legal step. Failed is
// not terminal: a declined payment moves back to Reviewing for a retry.
func CanTransitionTo(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusReviewing
	case StatusReviewing:
		return to == StatusProcessing || to == StatusIdle
	case StatusProcessing:
		return to == StatusSucceeded || to == StatusFailed
	case StatusFailed:
		return to == StatusReviewing
	}
	return false
}
