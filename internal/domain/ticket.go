package domain

import "time"

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusNew          TicketStatus = "New"
	TicketStatusInProgress   TicketStatus = "In Progress"
	TicketStatusAwaitingUser TicketStatus = "Awaiting User"
	TicketStatusClosed       TicketStatus = "Closed"
)

// CanonicalStatuses returns the status values offered for new writes. Any
// status may move to any other; there is no transition graph.
func CanonicalStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusInProgress,
		TicketStatusAwaitingUser,
		TicketStatusClosed,
	}
}

// IsCanonical reports whether the status belongs to the canonical set.
// Tickets carrying a legacy value outside the set are displayed and
// preserved as-is rather than rejected.
func (s TicketStatus) IsCanonical() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusAwaitingUser, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a single support request. UserEmail, Description and CreatedAt
// are immutable after creation; AssignedTo is nil while unassigned and holds
// a staff display name otherwise (stored verbatim, never re-validated
// against the live directory). InternalNotes accumulates attributed note
// blocks, newest first.
type Ticket struct {
	ID            string
	UserEmail     string
	Subject       string
	Category      string
	Description   string
	Status        TicketStatus
	AssignedTo    *string
	InternalNotes string
	CreatedAt     time.Time
}

// Unassigned reports whether the ticket has no assignee. An empty string is
// treated the same as a missing value.
func (t *Ticket) Unassigned() bool {
	return t.AssignedTo == nil || *t.AssignedTo == ""
}
