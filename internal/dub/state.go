package dub

import "fmt"

// State is the controller's position in the run state machine:
// Init → Extracting → Aligning(n) → Assembling → Combining → Mixing → Done,
// with Degraded recorded when any window fails and its span is replaced by
// silence.
type State int

const (
	StateInit State = iota
	StateExtracting
	StateAligning
	StateAssembling
	StateCombining
	StateMixing
	StateDone
	StateDegraded
)

// String returns the state name for logs and summaries.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateExtracting:
		return "extracting"
	case StateAligning:
		return "aligning"
	case StateAssembling:
		return "assembling"
	case StateCombining:
		return "combining"
	case StateMixing:
		return "mixing"
	case StateDone:
		return "done"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
