package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/events"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

// noteTimeLayout stamps note attribution headers at minute precision.
const noteTimeLayout = "2006-01-02 15:04"

// TicketService is the ticket lifecycle engine: creation defaults, status
// and assignment writes, and the append-only internal-notes history.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{
		tickets:    tickets,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CreateTicketInput describes a public user's new request.
type CreateTicketInput struct {
	OwnerEmail  string
	Subject     string
	Category    string
	Description string
}

// UpdateTicketInput describes a staff save from the detail view. Assignee is
// the selected display name, with "Unassigned" meaning none; Author is the
// acting staff member's display name for note attribution.
type UpdateTicketInput struct {
	ID       string
	Status   domain.TicketStatus
	Assignee string
	Note     string
	Author   string
}

// Create validates and persists a new ticket. Every new ticket starts as
// New, unassigned, with empty notes; the store assigns id and created_at.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}

	ticket := &domain.Ticket{
		UserEmail:     input.OwnerEmail,
		Subject:       subject,
		Category:      input.Category,
		Description:   description,
		Status:        domain.TicketStatusNew,
		AssignedTo:    nil,
		InternalNotes: "",
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:  events.EventTicketCreated,
		Actor: input.OwnerEmail,
		Payload: events.TicketCreatedPayload{
			TicketID:  ticket.ID,
			UserEmail: ticket.UserEmail,
			Subject:   ticket.Subject,
			Category:  ticket.Category,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket by id.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetForOwner fetches a ticket and enforces ownership by email.
func (s *TicketService) GetForOwner(ctx context.Context, ownerEmail, id string) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.UserEmail != ownerEmail {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	return ticket, nil
}

// ListForOwner returns a user's own tickets, newest first.
func (s *TicketService) ListForOwner(ctx context.Context, ownerEmail string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerEmail, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Update applies a staff save as one atomic field write. A non-blank note
// is prepended to the existing history with attribution; a blank note
// leaves the history untouched. Failures are reported to the caller, whose
// in-progress input must not be discarded.
func (s *TicketService) Update(ctx context.Context, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if !statusSelectable(input.Status, ticket.Status) {
		return nil, apperrors.NewValidationError("invalid status value",
			map[string]any{"status": string(input.Status)})
	}

	var assignee *string
	if input.Assignee != "" && input.Assignee != repository.FilterUnassigned {
		name := input.Assignee
		assignee = &name
	}

	notes := ticket.InternalNotes
	noteAdded := false
	if strings.TrimSpace(input.Note) != "" {
		notes = noteBlock(input.Author, s.now(), input.Note) + notes
		noteAdded = true
	}

	if err := s.tickets.ApplyUpdate(ctx, ticket.ID, input.Status, assignee, notes); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.Status = input.Status
	ticket.AssignedTo = assignee
	ticket.InternalNotes = notes

	s.publish(ctx, events.Event{
		Type:  events.EventTicketUpdated,
		Actor: input.Author,
		Payload: events.TicketUpdatedPayload{
			TicketID:   ticket.ID,
			Status:     ticket.Status,
			AssignedTo: ticket.AssignedTo,
			NoteAdded:  noteAdded,
		},
	})
	return ticket, nil
}

// StatusOptions returns the selectable statuses for a ticket: the canonical
// set, plus the ticket's current value when it falls outside it so a legacy
// status is never force-normalized on save.
func StatusOptions(current domain.TicketStatus) []domain.TicketStatus {
	options := domain.CanonicalStatuses()
	if current != "" && !current.IsCanonical() {
		options = append(options, current)
	}
	return options
}

// statusSelectable reports whether a write may set the given status on a
// ticket currently holding current: the canonical set, widened by the
// ticket's own out-of-set value so a legacy status survives a save.
func statusSelectable(status, current domain.TicketStatus) bool {
	for _, option := range StatusOptions(current) {
		if status == option {
			return true
		}
	}
	return false
}

// noteBlock formats one attributed history entry. The trailing blank line
// separates it from the previous newest block.
func noteBlock(author string, at time.Time, note string) string {
	return fmt.Sprintf("--- Update by %s (%s) ---\n%s\n\n", author, at.Format(noteTimeLayout), note)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
