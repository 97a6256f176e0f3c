package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/events"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/repository"
)

// ErrUsernameTaken rejects registration for an existing public username.
var ErrUsernameTaken = errors.New("username already exists")

// unknownStaffName labels staff records without a display name in assignee
// option lists.
const unknownStaffName = "Unknown Staff"

// Cache is the subset of the cache client the directory needs.
type Cache interface {
	Key(ctx context.Context, namespace string, parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Invalidate(ctx context.Context, namespace string) error
}

// Publisher is the event side of the directory: registrations are announced
// so the cached listing is invalidated before the call returns.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

const (
	nsStaff  = "directory:staff"
	nsPublic = "directory:public"
)

// Directory serves the two identity sets with a bounded read cache.
type Directory struct {
	staff      repository.AccountRepository
	public     repository.AccountRepository
	cache      Cache
	ttl        time.Duration
	bcryptCost int
	dispatcher Publisher
	logger     *zap.Logger
}

// Dependencies bundles the directory's collaborators.
type Dependencies struct {
	StaffRepo  repository.AccountRepository
	PublicRepo repository.AccountRepository
	Cache      Cache
	TTL        time.Duration
	BcryptCost int
	Dispatcher Publisher
	Logger     *zap.Logger
}

// New constructs the directory.
func New(deps Dependencies) *Directory {
	return &Directory{
		staff:      deps.StaffRepo,
		public:     deps.PublicRepo,
		cache:      deps.Cache,
		ttl:        deps.TTL,
		bcryptCost: deps.BcryptCost,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// FetchAll returns every account in the requested identity set, served from
// the cache within its TTL.
func (d *Directory) FetchAll(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	ns, repo := d.set(role)

	key := d.cache.Key(ctx, ns, "all")
	var cached []domain.Account
	if hit, _ := d.cache.GetJSON(ctx, key, &cached); hit {
		return cached, nil
	}

	accounts, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	_ = d.cache.SetJSON(ctx, key, accounts, d.ttl)
	return accounts, nil
}

// Authenticator builds a login verifier over the requested set's current
// credential map. Records without a username are dropped by the map
// derivation, not reported.
func (d *Directory) Authenticator(ctx context.Context, role domain.Role) (*auth.Authenticator, error) {
	accounts, err := d.FetchAll(ctx, role)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthenticator(accounts), nil
}

// StaffNames returns the staff display names offered as assignee options.
func (d *Directory) StaffNames(ctx context.Context) ([]string, error) {
	accounts, err := d.FetchAll(ctx, domain.RoleStaff)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(accounts))
	for _, account := range accounts {
		name := account.Name
		if name == "" {
			name = unknownStaffName
		}
		names = append(names, name)
	}
	return names, nil
}

// Register creates a public-user account: field validation, then the
// duplicate-username check, and only for a free username the bcrypt hash via
// the auth collaborator, which hands back the record to persist. Success is
// announced so the cached listing is refreshed. Staff accounts are never
// created through this path.
func (d *Directory) Register(ctx context.Context, candidate auth.Candidate) (*domain.Account, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	_, err := d.public.GetByUsername(ctx, candidate.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	account, err := auth.NewCredential(candidate, d.bcryptCost)
	if err != nil {
		return nil, err
	}

	if err := d.public.Create(ctx, account); err != nil {
		return nil, err
	}

	if d.logger != nil {
		d.logger.Info("public user registered", zap.String("username", account.Username))
	}
	if d.dispatcher != nil {
		_ = d.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Actor:     account.Username,
			Timestamp: time.Now(),
			Payload: events.UserRegisteredPayload{
				Username: account.Username,
				Email:    account.Email,
			},
		})
	}
	return account, nil
}

// InvalidatePublic drops the cached public listing. Subscribed to
// user_registered so a fresh registration is visible immediately.
func (d *Directory) InvalidatePublic(ctx context.Context) error {
	return d.cache.Invalidate(ctx, nsPublic)
}

// InvalidateStaff drops the cached staff listing for out-of-band
// provisioning changes.
func (d *Directory) InvalidateStaff(ctx context.Context) error {
	return d.cache.Invalidate(ctx, nsStaff)
}

func (d *Directory) set(role domain.Role) (string, repository.AccountRepository) {
	if role == domain.RoleStaff {
		return nsStaff, d.staff
	}
	return nsPublic, d.public
}
