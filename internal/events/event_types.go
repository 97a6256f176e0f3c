package events

import (
	"time"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventUserRegistered EventType = "user_registered"
)

// Event represents a domain event emitted by services. Subscribers use
// these to invalidate the queue and directory caches and to audit-log
// staff actions.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID  string `json:"ticket_id"`
	UserEmail string `json:"user_email"`
	Subject   string `json:"subject"`
	Category  string `json:"category"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketID   string              `json:"ticket_id"`
	Status     domain.TicketStatus `json:"status"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	NoteAdded  bool                `json:"note_added"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
