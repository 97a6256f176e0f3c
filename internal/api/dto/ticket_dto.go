package dto

import "time"

// CreateTicketRequest payload for a new support request.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateTicketRequest payload for a staff save from the detail view.
// Assignee carries a staff display name or "Unassigned"; a blank Note adds
// nothing to the history.
type UpdateTicketRequest struct {
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
	Note     string `json:"note"`
}

// TicketSummary is one row of the dashboard queue.
type TicketSummary struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Subject    string    `json:"subject"`
	UserEmail  string    `json:"user_email"`
	CreatedAt  time.Time `json:"created_at"`
	AssignedTo *string   `json:"assigned_to,omitempty"`
}

// TicketDetailResponse is the full detail view, including the option lists
// the edit form offers.
type TicketDetailResponse struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Subject         string    `json:"subject"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	UserEmail       string    `json:"user_email"`
	CreatedAt       time.Time `json:"created_at"`
	AssignedTo      *string   `json:"assigned_to,omitempty"`
	InternalNotes   string    `json:"internal_notes,omitempty"`
	StatusOptions   []string  `json:"status_options,omitempty"`
	AssigneeOptions []string  `json:"assignee_options,omitempty"`
}

// QueueResponse is one page of the dashboard queue plus pagination totals
// and the filter option lists.
type QueueResponse struct {
	Tickets         []TicketSummary `json:"tickets"`
	Total           int64           `json:"total"`
	Page            int             `json:"page"`
	TotalPages      int             `json:"total_pages"`
	StatusOptions   []string        `json:"status_options"`
	AssigneeOptions []string        `json:"assignee_options"`
}
