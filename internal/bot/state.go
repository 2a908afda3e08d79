package bot

// State is a state of the per-component state machine.
type State string

const (
	StateStart          State = "START"
	StateDetecting      State = "DETECTING"
	StateUpToDate       State = "UP_TO_DATE"
	StateReleasePending State = "RELEASE_PENDING"
	StateMerging        State = "MERGING"
	StateMerged         State = "MERGED"
	StateNoMatch        State = "NO_MATCH"
	StateSubmitting     State = "SUBMITTING"
	StateSubmitted      State = "SUBMITTED"
	StateUpdateExists   State = "UPDATE_EXISTS"
	StateAwaitingBuild  State = "AWAITING_BUILD"
	StateSkipped        State = "SKIPPED"
	StateDuplicateError State = "DUPLICATE_ERROR"
	StateAwaitingChecks State = "AWAITING_CHECKS"
	StateError          State = "ERROR"
)

// IsTerminal returns true if processing of a component ends in the state.
func (s State) IsTerminal() bool {
	switch s {
	case StateUpToDate,
		StateMerged,
		StateSubmitted,
		StateUpdateExists,
		StateAwaitingBuild,
		StateSkipped,
		StateDuplicateError,
		StateAwaitingChecks,
		StateError:
		return true
	default:
		return false
	}
}
