package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
)

// MockTicketRepository is a mock implementation of TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ApplyUpdate(ctx context.Context, id string, status domain.TicketStatus, assignedTo *string, internalNotes string) error {
	args := m.Called(ctx, id, status, assignedTo, internalNotes)
	return args.Error(0)
}

func (m *MockTicketRepository) CountAndList(ctx context.Context, filter repository.QueueFilter) ([]domain.Ticket, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Ticket), args.Get(1).(int64), args.Error(2)
}

func (m *MockTicketRepository) ListByOwner(ctx context.Context, email string, limit, offset int) ([]domain.Ticket, error) {
	args := m.Called(ctx, email, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

// fakeCache is an in-memory stand-in for the Redis cache with the same
// versioned-namespace invalidation behavior.
type fakeCache struct {
	mu       sync.Mutex
	store    map[string][]byte
	versions map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}, versions: map[string]int{}}
}

func (f *fakeCache) Key(_ context.Context, namespace string, parts ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := namespace + ":v" + strconv.Itoa(f.versions[namespace])
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	raw, ok := f.store[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.store[key] = raw
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, namespace string) error {
	f.mu.Lock()
	f.versions[namespace]++
	f.mu.Unlock()
	return nil
}

// memoryTicketRepo implements TicketRepository over a slice with the same
// filter and ordering semantics as the SQL repository, for end-to-end
// service tests.
type memoryTicketRepo struct {
	mu      sync.Mutex
	seq     int
	base    time.Time
	tickets []domain.Ticket
	lists   int
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{base: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("tck-%03d", r.seq)
	ticket.CreatedAt = r.base.Add(time.Duration(r.seq) * time.Second)
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			copied := r.tickets[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryTicketRepo) ApplyUpdate(_ context.Context, id string, status domain.TicketStatus, assignedTo *string, internalNotes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].Status = status
			r.tickets[i].AssignedTo = assignedTo
			r.tickets[i].InternalNotes = internalNotes
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryTicketRepo) CountAndList(_ context.Context, filter repository.QueueFilter) ([]domain.Ticket, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++

	var matched []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != "" && filter.Status != repository.FilterAll && string(ticket.Status) != filter.Status {
			continue
		}
		switch {
		case filter.Assignee == "" || filter.Assignee == repository.FilterAll:
		case filter.Assignee == repository.FilterUnassigned:
			if !ticket.Unassigned() {
				continue
			}
		default:
			if ticket.AssignedTo == nil || *ticket.AssignedTo != filter.Assignee {
				continue
			}
		}
		matched = append(matched, ticket)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func (r *memoryTicketRepo) ListByOwner(_ context.Context, email string, limit, offset int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.UserEmail == email {
			matched = append(matched, ticket)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}
