package service

import (
	"context"
	"strconv"
	"time"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

// nsQueue is the cache namespace for dashboard queue pages.
const nsQueue = "tickets:queue"

// Cache is the subset of the cache client the queue needs.
type Cache interface {
	Key(ctx context.Context, namespace string, parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Invalidate(ctx context.Context, namespace string) error
}

// QueueQuery is one dashboard read: a page window plus the two filter
// selections, using the "All"/"Unassigned" sentinels.
type QueueQuery struct {
	Page     int
	PageSize int
	Status   string
	Assignee string
}

// QueuePage is a page of the filtered queue together with the totals the
// dashboard needs for its page-count display.
type QueuePage struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// QueueService translates dashboard filter selections into store queries
// and caches each page for a short window. Ticket writes invalidate the
// whole namespace synchronously, so staff always observe their own edits.
type QueueService struct {
	tickets  repository.TicketRepository
	cache    Cache
	ttl      time.Duration
	pageSize int
}

// NewQueueService constructs the service. pageSize is the default page
// window when a query does not set one.
func NewQueueService(tickets repository.TicketRepository, cache Cache, ttl time.Duration, pageSize int) *QueueService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &QueueService{tickets: tickets, cache: cache, ttl: ttl, pageSize: pageSize}
}

// Query returns one page of the filtered queue and the total matching
// count. No matches is an empty page with total zero, not an error.
func (s *QueueService) Query(ctx context.Context, q QueueQuery) (*QueuePage, error) {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	if q.Status == "" {
		q.Status = repository.FilterAll
	}
	if q.Assignee == "" {
		q.Assignee = repository.FilterAll
	}

	key := s.cache.Key(ctx, nsQueue,
		strconv.Itoa(q.Page),
		strconv.Itoa(q.PageSize),
		q.Status,
		q.Assignee,
	)
	var cached QueuePage
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return &cached, nil
	}

	tickets, total, err := s.tickets.CountAndList(ctx, repository.QueueFilter{
		Status:   q.Status,
		Assignee: q.Assignee,
		Limit:    q.PageSize,
		Offset:   q.Page * q.PageSize,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	page := &QueuePage{
		Tickets:    tickets,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}
	_ = s.cache.SetJSON(ctx, key, page, s.ttl)
	return page, nil
}

// PageSize returns the configured default page window.
func (s *QueueService) PageSize() int {
	return s.pageSize
}

// Invalidate drops every cached queue page. Subscribed to ticket events so
// invalidation happens synchronously with each write.
func (s *QueueService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, nsQueue)
}
