package session

import "fmt"

// State is the lifecycle state of a transcription session.
type State int

const (
	// StateAccumulating - session is ingesting audio and may emit partials.
	StateAccumulating State = iota
	// StateFinalizing - end of input reached, final recognition in progress.
	StateFinalizing
	// StateDone - terminal; no further events are produced.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "ACCUMULATING"
	case StateFinalizing:
		return "FINALIZING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// IsTerminal returns true once the session can no longer produce events.
func (s State) IsTerminal() bool {
	return s == StateDone
}
