package auth

import (
	"errors"
	"strings"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
)

// Credential is one entry of the derived credential map: the profile fields
// a front needs after login plus the opaque hashed password.
type Credential struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Candidate is a registration request before hashing.
type Candidate struct {
	Username string
	Name     string
	Email    string
	Password string
}

// ErrMissingFields rejects a registration candidate with a blank field.
var ErrMissingFields = errors.New("username, name, email and password are required")

// Validate checks the candidate for blank required fields.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Username) == "" ||
		strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Email) == "" ||
		c.Password == "" {
		return ErrMissingFields
	}
	return nil
}

// CredentialMap derives username-keyed credentials from directory accounts.
// Records missing a username are silently skipped; directory entries are
// best-effort, not strictly validated.
func CredentialMap(accounts []domain.Account) map[string]Credential {
	creds := make(map[string]Credential, len(accounts))
	for _, account := range accounts {
		if account.Username == "" {
			continue
		}
		creds[account.Username] = Credential{
			Username: account.Username,
			Name:     account.Name,
			Email:    account.Email,
			Password: account.Password,
		}
	}
	return creds
}

// Authenticator verifies logins against a credential map. It holds no state
// beyond the snapshot it was built from; callers rebuild it when the
// directory cache refreshes.
type Authenticator struct {
	creds map[string]Credential
}

// NewAuthenticator builds an authenticator over directory accounts.
func NewAuthenticator(accounts []domain.Account) *Authenticator {
	return &Authenticator{creds: CredentialMap(accounts)}
}

// Login checks the username/password pair and returns the matched
// credential. A missing user and a wrong password are indistinguishable to
// the caller.
func (a *Authenticator) Login(username, password string) (Credential, bool) {
	cred, ok := a.creds[username]
	if !ok {
		return Credential{}, false
	}
	if err := ComparePassword(cred.Password, password); err != nil {
		return Credential{}, false
	}
	return cred, true
}

// NewCredential validates and hashes a registration candidate, returning the
// record to persist. The caller owns persistence and cache invalidation;
// nothing is written into shared state here.
func NewCredential(candidate Candidate, cost int) (*domain.Account, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(candidate.Password, cost)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		Username: candidate.Username,
		Name:     candidate.Name,
		Email:    candidate.Email,
		Password: hash,
	}, nil
}
