package remediate

// Verdict is the final result for one interface in one run.
type Verdict int

const (
	VerdictHealthy Verdict = iota
	VerdictRemediated
	VerdictFailed
	VerdictSkippedAbsent
	VerdictSkippedDown
)

func (v Verdict) String() string {
	switch v {
	case VerdictHealthy:
		return "healthy"
	case VerdictRemediated:
		return "remediated-healthy"
	case VerdictFailed:
		return "failed"
	case VerdictSkippedAbsent:
		return "skipped-absent"
	case VerdictSkippedDown:
		return "skipped-down"
	default:
		return "unknown"
	}
}

// Succeeded reports whether v counts toward the run's success total.
func (v Verdict) Succeeded() bool {
	return v == VerdictHealthy || v == VerdictRemediated
}

// Skipped reports whether the interface failed a precondition.
func (v Verdict) Skipped() bool {
	return v == VerdictSkippedAbsent || v == VerdictSkippedDown
}

// State is a step of the remediation state machine.
type State int

const (
	StateChecking State = iota
	StateCooldown
	StateRemediating
	StateFinalVerify
	StateDone
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateCooldown:
		return "cooldown-recheck"
	case StateRemediating:
		return "remediating"
	case StateFinalVerify:
		return "final-verify"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
