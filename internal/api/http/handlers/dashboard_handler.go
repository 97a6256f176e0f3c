package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/dto"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/service"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

// DashboardHandler serves the staff front: the filtered ticket queue and
// the detail view with its save action.
type DashboardHandler struct {
	tickets   *service.TicketService
	queue     *service.QueueService
	directory StaffNameLister
}

// StaffNameLister supplies the assignee option list.
type StaffNameLister interface {
	StaffNames(ctx context.Context) ([]string, error)
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, queue *service.QueueService, dir StaffNameLister) *DashboardHandler {
	return &DashboardHandler{tickets: tickets, queue: queue, directory: dir}
}

// Queue handles GET /dashboard. Landing here returns the session to the
// list view; filter params flow through session state so a filter change
// resets the page position.
func (h *DashboardHandler) Queue(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	state.ReturnToDashboard()

	status := c.Query("status", repository.FilterAll)
	assignee := c.Query("assignee", repository.FilterAll)
	filtersChanged := state.ApplyFilters(status, assignee)
	if !filtersChanged {
		if raw := c.Query("page"); raw != "" {
			if page, err := strconv.Atoi(raw); err == nil {
				state.SetPage(page)
			}
		}
	}

	page, err := h.queue.Query(c.UserContext(), service.QueueQuery{
		Page:     state.Page(),
		PageSize: h.queue.PageSize(),
		Status:   status,
		Assignee: assignee,
	})
	if err != nil {
		return err
	}

	names, err := h.directory.StaffNames(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, ticketSummary(&page.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.QueueResponse{
		Tickets:         items,
		Total:           page.Total,
		Page:            page.Page,
		TotalPages:      page.TotalPages,
		StatusOptions:   statusFilterOptions(),
		AssigneeOptions: assigneeFilterOptions(names),
	}})
}

// Detail handles GET /tickets/:id, selecting the ticket into the session.
func (h *DashboardHandler) Detail(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	state.SelectTicket(ticket.ID)

	names, err := h.directory.StaffNames(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, names)})
}

// Update handles POST /tickets/:id. A successful save always returns the
// session to the dashboard; on failure the detail view and the caller's
// pending input stay as they were.
func (h *DashboardHandler) Update(c *fiber.Ctx) error {
	state, ok := auth.StateFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Update(c.UserContext(), service.UpdateTicketInput{
		ID:       c.Params("id"),
		Status:   domain.TicketStatus(req.Status),
		Assignee: req.Assignee,
		Note:     req.Note,
		Author:   claims.Name,
	})
	if err != nil {
		return err
	}

	state.ReturnToDashboard()
	return c.JSON(fiber.Map{
		"data": ticketSummary(ticket),
		"view": "dashboard",
	})
}

func statusFilterOptions() []string {
	options := []string{repository.FilterAll}
	for _, status := range domain.CanonicalStatuses() {
		options = append(options, string(status))
	}
	return options
}

func assigneeFilterOptions(staffNames []string) []string {
	options := []string{repository.FilterAll, repository.FilterUnassigned}
	seen := map[string]struct{}{}
	for _, name := range staffNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		options = append(options, name)
	}
	return options
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         ticket.ID,
		Status:     string(ticket.Status),
		Subject:    ticket.Subject,
		UserEmail:  ticket.UserEmail,
		CreatedAt:  ticket.CreatedAt,
		AssignedTo: ticket.AssignedTo,
	}
}

func ticketDetail(ticket *domain.Ticket, staffNames []string) dto.TicketDetailResponse {
	statusOptions := make([]string, 0, 5)
	for _, status := range service.StatusOptions(ticket.Status) {
		statusOptions = append(statusOptions, string(status))
	}
	assigneeOptions := append([]string{repository.FilterUnassigned}, staffNames...)

	return dto.TicketDetailResponse{
		ID:              ticket.ID,
		Status:          string(ticket.Status),
		Subject:         ticket.Subject,
		Category:        ticket.Category,
		Description:     ticket.Description,
		UserEmail:       ticket.UserEmail,
		CreatedAt:       ticket.CreatedAt,
		AssignedTo:      ticket.AssignedTo,
		InternalNotes:   ticket.InternalNotes,
		StatusOptions:   statusOptions,
		AssigneeOptions: assigneeOptions,
	}
}
