package domain

import "fmt"

// AccountType distinguishes administrators from regular players.
type AccountType string

const (
	AccountTypeAdmin AccountType = "admin"
	AccountTypeUser  AccountType = "user"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypeAdmin || t == AccountTypeUser
}

// Question is a single multiple-choice entry of the question bank.
// Answer is expected to match one of Options but nothing enforces it.
type Question struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
}

// Clone returns a copy that does not share the options slice.
func (q Question) Clone() Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// QuestionUpdate carries the fields of a partial question edit.
// Nil fields are left untouched; a non-nil Options replaces the whole list.
type QuestionUpdate struct {
	Text     *string  `json:"text,omitempty"`
	Options  []string `json:"options,omitempty"`
	Answer   *string  `json:"answer,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// Apply merges the set fields of u over q.
func (u QuestionUpdate) Apply(q Question) Question {
	if u.Text != nil {
		q.Text = *u.Text
	}
	if u.Options != nil {
		q.Options = append([]string(nil), u.Options...)
	}
	if u.Answer != nil {
		q.Answer = *u.Answer
	}
	if u.Category != nil {
		q.Category = *u.Category
	}
	return q
}

// StartOptions selects the questions of a quiz session.
type StartOptions struct {
	NumberQuestions int    `json:"numberQuestions"`
	Category        string `json:"category"`
	Username        string `json:"username"`
}

// LeaderboardEntry is a username/score pair, optionally tagged with its category.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Category string `json:"category,omitempty"`
}

func (e LeaderboardEntry) String() string {
	if e.Category == "" {
		return fmt.Sprintf("%s has a score of %d.", e.Username, e.Score)
	}
	return fmt.Sprintf("%s has a score of %d in category '%s'.", e.Username, e.Score, e.Category)
}

// ProfileRecord is the persisted form of a user profile.
// PasswordHash holds a bcrypt hash, never the plaintext.
type ProfileRecord struct {
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	AccountType  AccountType `json:"accountType"`
}
