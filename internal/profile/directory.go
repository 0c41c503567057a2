package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"quiz-engine/internal/domain"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Store persists profile records (in-memory, Redis, etc).
type Store interface {
	// Create saves rec, returning domain.ErrUsernameTaken if the username exists.
	Create(ctx context.Context, rec domain.ProfileRecord) error
	// Get returns domain.ErrProfileNotFound for unknown usernames.
	Get(ctx context.Context, username string) (domain.ProfileRecord, error)
}

// Directory registers profiles and logs users in. Passwords are bcrypt-hashed
// before they reach the store.
type Directory struct {
	store Store
	cost  int
}

// NewDirectory returns a Directory hashing passwords with bcrypt.DefaultCost.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store, cost: bcrypt.DefaultCost}
}

// NewDirectoryWithCost is meant for tests, where bcrypt.MinCost keeps hashing fast.
func NewDirectoryWithCost(store Store, cost int) *Directory {
	return &Directory{store: store, cost: cost}
}

// ValidUsername reports whether username is 3-20 characters of letters, digits or underscores.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Register validates and stores a new profile. The returned profile is not authenticated.
func (d *Directory) Register(ctx context.Context, username, email, password string, accountType domain.AccountType, firstName, lastName string) (*UserProfile, error) {
	if !ValidUsername(username) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidUsername, username)
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("unknown account type %q", accountType)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	rec := domain.ProfileRecord{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		AccountType:  accountType,
	}
	p, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	if err := d.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return p, nil
}

// Login loads username and authenticates it with email and password.
func (d *Directory) Login(ctx context.Context, username, email, password string) (*UserProfile, error) {
	rec, err := d.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	p, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	if !p.Authenticate(email, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return p, nil
}
