package access

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid payment transition")

// Event moves a purchase from one state to the next.
type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// Next returns the state reached from s on ev. A purchase is submitted from
// nothing or after a rejection, and only a pending one can be reviewed.
// Approval is final.
func (s State) Next(ev Event) (State, error) {
	switch {
	case ev == EventSubmit && (s == NoPayment || s == Rejected):
		return Pending, nil
	case ev == EventApprove && s == Pending:
		return Approved, nil
	case ev == EventReject && s == Pending:
		return Rejected, nil
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, s)
}
