package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
)

// FilterAll is the sentinel meaning "no predicate" for queue filters.
const FilterAll = "All"

// FilterUnassigned matches tickets whose assignee is null or empty.
const FilterUnassigned = "Unassigned"

// QueueFilter captures the dashboard's filter selections plus the page
// window. Status and Assignee use the UI sentinels above.
type QueueFilter struct {
	Status   string
	Assignee string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence. ApplyUpdate performs the
// single atomic field-level write the lifecycle engine issues; tickets are
// never mutated any other way after creation.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ApplyUpdate(ctx context.Context, id string, status domain.TicketStatus, assignedTo *string, internalNotes string) error
	CountAndList(ctx context.Context, filter QueueFilter) ([]domain.Ticket, int64, error)
	ListByOwner(ctx context.Context, email string, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, user_email, subject, category, description, status, assigned_to, internal_notes, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_email, subject, category, description, status, assigned_to, internal_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UserEmail,
		ticket.Subject,
		ticket.Category,
		ticket.Description,
		ticket.Status,
		ticket.AssignedTo,
		ticket.InternalNotes,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserEmail,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Description,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.InternalNotes,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ApplyUpdate(ctx context.Context, id string, status domain.TicketStatus, assignedTo *string, internalNotes string) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_to=$2, internal_notes=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, assignedTo, internalNotes, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountAndList evaluates the filter once for both the total count and the
// requested page window. Sorting is created_at descending with id as a
// stable tie-break so identical timestamps cannot straddle pages
// nondeterministically.
func (r *ticketRepository) CountAndList(ctx context.Context, filter QueueFilter) ([]domain.Ticket, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != "" && filter.Status != FilterAll {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	switch {
	case filter.Assignee == "" || filter.Assignee == FilterAll:
		// no assignee predicate
	case filter.Assignee == FilterUnassigned:
		clauses = append(clauses, "(assigned_to IS NULL OR assigned_to = '')")
	default:
		args = append(args, filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM tickets WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, email string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE user_email=$1 ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, limit, offset)
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.UserEmail,
			&ticket.Subject,
			&ticket.Category,
			&ticket.Description,
			&ticket.Status,
			&ticket.AssignedTo,
			&ticket.InternalNotes,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
