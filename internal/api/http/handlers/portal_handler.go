package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/dto"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/directory"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/service"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

// PortalHandler serves the public front: registration, ticket submission
// and tracking one's own tickets.
type PortalHandler struct {
	tickets   *service.TicketService
	directory *directory.Directory
	pageSize  int
}

// NewPortalHandler constructs handler.
func NewPortalHandler(tickets *service.TicketService, dir *directory.Directory, pageSize int) *PortalHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &PortalHandler{tickets: tickets, directory: dir, pageSize: pageSize}
}

// Register handles POST /register. A failed registration leaves the stored
// collection untouched and reports the reason.
func (h *PortalHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.directory.Register(c.UserContext(), auth.Candidate{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrUsernameTaken):
			return apperrors.NewConflict(err.Error(), nil)
		case errors.Is(err, auth.ErrMissingFields):
			return apperrors.NewValidationError(err.Error(), nil)
		}
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		Username: account.Username,
		Name:     account.Name,
		Email:    account.Email,
	}})
}

// CreateTicket handles POST /tickets for the logged-in user.
func (h *PortalHandler) CreateTicket(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), service.CreateTicketInput{
		OwnerEmail:  claims.Email,
		Subject:     req.Subject,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets handles GET /tickets, newest first.
func (h *PortalHandler) ListTickets(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	page := 0
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	tickets, err := h.tickets.ListForOwner(c.UserContext(), claims.Email, h.pageSize, page*h.pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket handles GET /tickets/:id with an ownership check.
func (h *PortalHandler) GetTicket(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	ticket, err := h.tickets.GetForOwner(c.UserContext(), claims.Email, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ownerTicketDetail(ticket)})
}

// ownerTicketDetail omits internal notes and staff option lists; the
// accumulated history is staff-only.
func ownerTicketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Status:      string(ticket.Status),
		Subject:     ticket.Subject,
		Category:    ticket.Category,
		Description: ticket.Description,
		UserEmail:   ticket.UserEmail,
		CreatedAt:   ticket.CreatedAt,
		AssignedTo:  ticket.AssignedTo,
	}
}
