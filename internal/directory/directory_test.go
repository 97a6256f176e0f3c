package directory

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/events"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

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

func newTestDirectory(staff, public *MockAccountRepository, dispatcher Publisher) *Directory {
	return New(Dependencies{
		StaffRepo:  staff,
		PublicRepo: public,
		Cache:      newFakeCache(),
		TTL:        10 * time.Minute,
		BcryptCost: bcrypt.MinCost,
		Dispatcher: dispatcher,
	})
}

func TestFetchAll_CachesListing(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dir := newTestDirectory(staff, public, nil)

	staff.On("ListAll", mock.Anything).Return([]domain.Account{
		{Username: "jkirk", Name: "J. Kirk", Email: "j.kirk@fleet.example"},
	}, nil).Once()

	first, err := dir.FetchAll(context.Background(), domain.RoleStaff)
	require.NoError(t, err)

	second, err := dir.FetchAll(context.Background(), domain.RoleStaff)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	staff.AssertExpectations(t)
}

func TestStaffNames_FallbackForBlankName(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dir := newTestDirectory(staff, public, nil)

	staff.On("ListAll", mock.Anything).Return([]domain.Account{
		{Username: "jkirk", Name: "J. Kirk"},
		{Username: "legacy"},
	}, nil)

	names, err := dir.StaffNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"J. Kirk", "Unknown Staff"}, names)
}

func TestRegister_Success(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dispatcher := events.NewInMemoryDispatcher()
	dir := newTestDirectory(staff, public, dispatcher)

	var published []events.Event
	dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	public.On("GetByUsername", mock.Anything, "hsolo").Return(nil, pgx.ErrNoRows)
	public.On("Create", mock.Anything, mock.Anything).Return(nil)

	account, err := dir.Register(context.Background(), auth.Candidate{
		Username: "hsolo",
		Name:     "H. Solo",
		Email:    "h.solo@falcon.example",
		Password: "never-tell-me-the-odds",
	})

	require.NoError(t, err)
	assert.Equal(t, "hsolo", account.Username)
	assert.NotEqual(t, "never-tell-me-the-odds", account.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("never-tell-me-the-odds")))
	require.Len(t, published, 1)
	assert.Equal(t, events.EventUserRegistered, published[0].Type)
	public.AssertExpectations(t)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dir := newTestDirectory(staff, public, nil)

	public.On("GetByUsername", mock.Anything, "hsolo").Return(&domain.Account{Username: "hsolo"}, nil)

	_, err := dir.Register(context.Background(), auth.Candidate{
		Username: "hsolo",
		Name:     "H. Solo",
		Email:    "h.solo@falcon.example",
		Password: "pw",
	})

	assert.ErrorIs(t, err, ErrUsernameTaken)
	public.AssertNotCalled(t, "Create")
}

func TestRegister_DuplicateCheckedBeforeHashing(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	// A cost beyond bcrypt's maximum makes any hash attempt fail, so a
	// duplicate must be reported without ever reaching the hasher.
	dir := New(Dependencies{
		StaffRepo:  staff,
		PublicRepo: public,
		Cache:      newFakeCache(),
		TTL:        10 * time.Minute,
		BcryptCost: bcrypt.MaxCost + 1,
	})

	public.On("GetByUsername", mock.Anything, "hsolo").Return(&domain.Account{Username: "hsolo"}, nil)

	_, err := dir.Register(context.Background(), auth.Candidate{
		Username: "hsolo",
		Name:     "H. Solo",
		Email:    "h.solo@falcon.example",
		Password: "pw",
	})

	assert.ErrorIs(t, err, ErrUsernameTaken)
	public.AssertNotCalled(t, "Create")
}

func TestRegister_MissingFields(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dir := newTestDirectory(staff, public, nil)

	_, err := dir.Register(context.Background(), auth.Candidate{
		Username: "hsolo",
		Name:     "  ",
		Email:    "h.solo@falcon.example",
		Password: "pw",
	})

	assert.ErrorIs(t, err, auth.ErrMissingFields)
	public.AssertNotCalled(t, "GetByUsername")
	public.AssertNotCalled(t, "Create")
}

func TestRegister_InvalidationRefreshesListing(t *testing.T) {
	staff := new(MockAccountRepository)
	public := new(MockAccountRepository)
	dispatcher := events.NewInMemoryDispatcher()
	dir := newTestDirectory(staff, public, dispatcher)
	dispatcher.Subscribe(events.EventUserRegistered, func(ctx context.Context, _ events.Event) error {
		return dir.InvalidatePublic(ctx)
	})

	public.On("ListAll", mock.Anything).Return([]domain.Account{}, nil).Once()
	_, err := dir.FetchAll(context.Background(), domain.RolePublic)
	require.NoError(t, err)

	public.On("GetByUsername", mock.Anything, "hsolo").Return(nil, pgx.ErrNoRows)
	public.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err = dir.Register(context.Background(), auth.Candidate{
		Username: "hsolo",
		Name:     "H. Solo",
		Email:    "h.solo@falcon.example",
		Password: "pw",
	})
	require.NoError(t, err)

	public.On("ListAll", mock.Anything).Return([]domain.Account{
		{Username: "hsolo", Name: "H. Solo"},
	}, nil).Once()
	refreshed, err := dir.FetchAll(context.Background(), domain.RolePublic)
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.Equal(t, "hsolo", refreshed[0].Username)
	public.AssertExpectations(t)
}
