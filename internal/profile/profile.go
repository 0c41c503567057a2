package profile

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"quiz-engine/internal/domain"
)

const (
	minNameLength = 1
	maxNameLength = 50
)

// credential checks a password without exposing how it is stored.
type credential interface {
	matches(password string) bool
}

type plaintextCredential string

func (c plaintextCredential) matches(password string) bool {
	return string(c) == password
}

type bcryptCredential []byte

func (c bcryptCredential) matches(password string) bool {
	return bcrypt.CompareHashAndPassword(c, []byte(password)) == nil
}

// UserProfile holds a user's identity, display names and authentication state.
// Once authenticated a profile stays authenticated.
type UserProfile struct {
	username      string
	email         string
	credential    credential
	firstName     string
	lastName      string
	accountType   domain.AccountType
	authenticated bool
}

// New builds a profile whose password is kept and compared as plain text.
func New(username, email, password string, accountType domain.AccountType, firstName, lastName string) (*UserProfile, error) {
	return newProfile(username, email, plaintextCredential(password), accountType, firstName, lastName)
}

// FromRecord builds a profile from its stored form, comparing passwords against the bcrypt hash.
func FromRecord(rec domain.ProfileRecord) (*UserProfile, error) {
	return newProfile(rec.Username, rec.Email, bcryptCredential(rec.PasswordHash), rec.AccountType, rec.FirstName, rec.LastName)
}

func newProfile(username, email string, cred credential, accountType domain.AccountType, firstName, lastName string) (*UserProfile, error) {
	p := &UserProfile{
		username:    username,
		email:       email,
		credential:  cred,
		accountType: accountType,
	}
	if err := p.SetFirstName(firstName); err != nil {
		return nil, err
	}
	if err := p.SetLastName(lastName); err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate marks the profile authenticated when both email and password match exactly.
// A failed attempt leaves the current state untouched.
func (p *UserProfile) Authenticate(email, password string) bool {
	if p.email == email && p.credential.matches(password) {
		p.authenticated = true
		return true
	}
	return false
}

// IsAuthenticated reports whether Authenticate has succeeded once.
func (p *UserProfile) IsAuthenticated() bool {
	return p.authenticated
}

// Username returns the immutable identity key.
func (p *UserProfile) Username() string {
	return p.username
}

// Email returns the address used to authenticate.
func (p *UserProfile) Email() string {
	return p.email
}

// AccountType returns whether the profile is an admin or a regular user.
func (p *UserProfile) AccountType() domain.AccountType {
	return p.accountType
}

// FirstName returns the validated first name.
func (p *UserProfile) FirstName() string {
	return p.firstName
}

// SetFirstName stores name if it is 1 to 50 characters long.
func (p *UserProfile) SetFirstName(name string) error {
	if !validName(name) {
		return fmt.Errorf("invalid first name: %w", domain.ErrInvalidName)
	}
	p.firstName = name
	return nil
}

// LastName returns the validated last name.
func (p *UserProfile) LastName() string {
	return p.lastName
}

// SetLastName stores name if it is 1 to 50 characters long.
func (p *UserProfile) SetLastName(name string) error {
	if !validName(name) {
		return fmt.Errorf("invalid last name: %w", domain.ErrInvalidName)
	}
	p.lastName = name
	return nil
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLength && n <= maxNameLength
}
