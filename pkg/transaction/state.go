package transaction

// State is the position of a transaction in its lifecycle.
type State int

const (
	StateStart State = iota
	StateBackedUp
	StateApplied
	StateCommitted
	StateRolledBack
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateBackedUp:
		return "backed-up"
	case StateApplied:
		return "applied"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
