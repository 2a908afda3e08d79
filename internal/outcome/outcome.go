// Package outcome defines the result of processing a component.
package outcome

import "fmt"

// Action is the kind of the outcome.
type Action string

const (
	ActionUpToDate  Action = "up_to_date"
	ActionMerged    Action = "merged"
	ActionSubmitted Action = "submitted"
	ActionSkipped   Action = "skipped"
	ActionError     Action = "error"
)

// Actions lists all valid Action values.
var Actions = []Action{ActionUpToDate, ActionMerged, ActionSubmitted, ActionSkipped, ActionError}

// Record is the outcome of processing one component in one run.
type Record struct {
	Component string
	Action    Action
	Detail    string
}

// String returns the single line that is reported for the record.
func (r *Record) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("%s: %s", r.Component, r.Action)
	}

	return fmt.Sprintf("%s: %s: %s", r.Component, r.Action, r.Detail)
}
