package processor

// Outcome classifies how a single job ended
type Outcome int

const (
	// Succeeded means the tool exited with status 0
	Succeeded Outcome = iota
	// Skipped means the input was not a regular file; it is neither a success nor a failure
	Skipped
	// FailedExists means the destination existed and overwriting was disabled
	FailedExists
	// FailedPattern means no output path could be derived from the input name
	FailedPattern
	// FailedTool means the tool ran and exited non-zero
	FailedTool
	// FailedLaunch means the tool could not be started
	FailedLaunch
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case FailedExists:
		return "failed_exists"
	case FailedPattern:
		return "failed_pattern"
	case FailedTool:
		return "failed_tool"
	case FailedLaunch:
		return "failed_launch"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome belongs in the failure list
func (o Outcome) Failed() bool {
	switch o {
	case FailedExists, FailedPattern, FailedTool, FailedLaunch:
		return true
	}
	return false
}

// Outcomes lists every outcome in declaration order
func Outcomes() []Outcome {
	return []Outcome{Succeeded, Skipped, FailedExists, FailedPattern, FailedTool, FailedLaunch}
}
