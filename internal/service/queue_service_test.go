package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/events"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
)

func TestQueueQuery_Pagination(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		pageSize       int
		wantTotalPages int
	}{
		{"exact multiple", 100, 50, 2},
		{"partial last page", 101, 50, 3},
		{"single page", 7, 50, 1},
		{"empty", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTicketRepository)
			svc := NewQueueService(repo, newFakeCache(), time.Minute, tt.pageSize)

			repo.On("CountAndList", mock.Anything, repository.QueueFilter{
				Status:   repository.FilterAll,
				Assignee: repository.FilterAll,
				Limit:    tt.pageSize,
				Offset:   0,
			}).Return([]domain.Ticket{}, tt.total, nil)

			page, err := svc.Query(context.Background(), QueueQuery{})

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
			assert.Equal(t, tt.total, page.Total)
			assert.NotNil(t, page.Tickets)
		})
	}
}

func TestQueueQuery_PassesFilterAndWindow(t *testing.T) {
	repo := new(MockTicketRepository)
	svc := NewQueueService(repo, newFakeCache(), time.Minute, 50)

	repo.On("CountAndList", mock.Anything, repository.QueueFilter{
		Status:   "New",
		Assignee: repository.FilterUnassigned,
		Limit:    50,
		Offset:   100,
	}).Return([]domain.Ticket{}, int64(120), nil)

	_, err := svc.Query(context.Background(), QueueQuery{
		Page:     2,
		Status:   "New",
		Assignee: repository.FilterUnassigned,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestQueueQuery_CacheHitSkipsStore(t *testing.T) {
	repo := new(MockTicketRepository)
	svc := NewQueueService(repo, newFakeCache(), time.Minute, 50)

	repo.On("CountAndList", mock.Anything, mock.Anything).Return([]domain.Ticket{{ID: "tck-001"}}, int64(1), nil).Once()

	first, err := svc.Query(context.Background(), QueueQuery{})
	require.NoError(t, err)

	second, err := svc.Query(context.Background(), QueueQuery{})
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Tickets, second.Tickets)
	repo.AssertExpectations(t)
}

func TestQueueInvalidate_ForcesRequery(t *testing.T) {
	repo := new(MockTicketRepository)
	svc := NewQueueService(repo, newFakeCache(), time.Minute, 50)

	repo.On("CountAndList", mock.Anything, mock.Anything).Return([]domain.Ticket{}, int64(0), nil).Twice()

	_, err := svc.Query(context.Background(), QueueQuery{})
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Query(context.Background(), QueueQuery{})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

// TestTicketLifecycle walks a ticket from creation through a staff update
// and verifies queue reads stay coherent across the cache.
func TestTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	dispatcher := events.NewInMemoryDispatcher()

	tickets := NewTicketService(repo, dispatcher)
	tickets.now = fixedClock(time.Date(2024, 5, 4, 9, 30, 0, 0, time.UTC))
	queue := NewQueueService(repo, newFakeCache(), time.Minute, 50)

	invalidate := func(ctx context.Context, _ events.Event) error {
		return queue.Invalidate(ctx)
	}
	dispatcher.Subscribe(events.EventTicketCreated, invalidate)
	dispatcher.Subscribe(events.EventTicketUpdated, invalidate)

	created, err := tickets.Create(ctx, CreateTicketInput{
		OwnerEmail:  "h.solo@falcon.example",
		Subject:     "Hyperdrive Malfunction",
		Category:    "Propulsion",
		Description: "The motivator blew mid-jump.",
	})
	require.NoError(t, err)

	newOnly, err := queue.Query(ctx, QueueQuery{Status: "New"})
	require.NoError(t, err)
	require.Len(t, newOnly.Tickets, 1)
	assert.Equal(t, created.ID, newOnly.Tickets[0].ID)

	unassigned, err := queue.Query(ctx, QueueQuery{Assignee: repository.FilterUnassigned})
	require.NoError(t, err)
	require.Len(t, unassigned.Tickets, 1)

	updated, err := tickets.Update(ctx, UpdateTicketInput{
		ID:       created.ID,
		Status:   domain.TicketStatusInProgress,
		Assignee: "J. Kirk",
		Note:     "Ordered a replacement motivator.",
		Author:   "J. Kirk",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "J. Kirk", *updated.AssignedTo)
	assert.Contains(t, updated.InternalNotes, "--- Update by J. Kirk (2024-05-04 09:30) ---\nOrdered a replacement motivator.\n\n")

	// The earlier cached pages were invalidated by the update, so these
	// reads reflect the new state even inside the cache window.
	newOnly, err = queue.Query(ctx, QueueQuery{Status: "New"})
	require.NoError(t, err)
	assert.Empty(t, newOnly.Tickets)
	assert.Zero(t, newOnly.Total)

	mine, err := queue.Query(ctx, QueueQuery{Assignee: "J. Kirk"})
	require.NoError(t, err)
	require.Len(t, mine.Tickets, 1)
	assert.Equal(t, domain.TicketStatusInProgress, mine.Tickets[0].Status)

	owned, err := tickets.ListForOwner(ctx, "h.solo@falcon.example", 50, 0)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, created.ID, owned[0].ID)
}

func TestQueueOrdering_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	tickets := NewTicketService(repo, nil)
	queue := NewQueueService(repo, newFakeCache(), time.Minute, 2)

	for _, subject := range []string{"first", "second", "third"} {
		_, err := tickets.Create(ctx, CreateTicketInput{
			OwnerEmail:  "c.bodger@scrapyard.example",
			Subject:     subject,
			Description: "details for " + subject,
		})
		require.NoError(t, err)
	}

	page, err := queue.Query(ctx, QueueQuery{})
	require.NoError(t, err)
	require.Len(t, page.Tickets, 2)
	assert.Equal(t, "third", page.Tickets[0].Subject)
	assert.Equal(t, "second", page.Tickets[1].Subject)
	assert.Equal(t, 2, page.TotalPages)

	last, err := queue.Query(ctx, QueueQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, last.Tickets, 1)
	assert.Equal(t, "first", last.Tickets[0].Subject)
}
