package quiz

import (
	"io"
	"log/slog"
	"strings"

	"quiz-engine/internal/domain"
)

// DefaultQuestionLimit is the per-category bank size used when none is configured.
const DefaultQuestionLimit = 10

// Principal is the view of a user profile the engine needs for its checks.
// The engine keeps the handle but never owns the profile.
type Principal interface {
	Username() string
	AccountType() domain.AccountType
	IsAuthenticated() bool
}

// ScoreBoard receives the score of a finished quiz.
type ScoreBoard interface {
	AddScore(category, username string, score int)
}

// Engine owns the question bank and runs one scored quiz session at a time.
// It is not safe for concurrent use.
type Engine struct {
	questions    []domain.Question
	currentUser  Principal
	currentScore int
	limit        int
	logger       *slog.Logger
}

// NewEngine creates an engine that stores at most limit questions per category.
// A non-positive limit selects DefaultQuestionLimit.
func NewEngine(limit int, logger *slog.Logger) *Engine {
	if limit <= 0 {
		limit = DefaultQuestionLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{limit: limit, logger: logger}
}

// QuestionLimit returns the per-category limit.
func (e *Engine) QuestionLimit() int {
	return e.limit
}

// SetCurrentUser makes p the active user. Unauthenticated profiles are refused
// and leave the previous active user in place.
func (e *Engine) SetCurrentUser(p Principal) error {
	if p == nil || !p.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	e.currentUser = p
	return nil
}

// ClearCurrentUser leaves the engine without an active user.
func (e *Engine) ClearCurrentUser() {
	e.currentUser = nil
}

// CurrentUser returns the active user, or nil.
func (e *Engine) CurrentUser() Principal {
	return e.currentUser
}

func (e *Engine) isAdmin() bool {
	return e.currentUser != nil && e.currentUser.AccountType() == domain.AccountTypeAdmin
}

// AddQuestion appends q to the bank. A full category is not an error: the
// question is dropped and a warning is logged.
func (e *Engine) AddQuestion(q domain.Question) error {
	if !e.isAdmin() || !e.currentUser.IsAuthenticated() {
		return domain.ErrNotAuthorized
	}

	inCategory := 0
	for _, existing := range e.questions {
		if existing.Category == q.Category {
			inCategory++
		}
	}
	if inCategory >= e.limit {
		e.logger.Warn("question limit reached for category", "category", q.Category, "limit", e.limit, "question_id", q.ID)
		return nil
	}
	e.questions = append(e.questions, q.Clone())
	return nil
}

// EditQuestion merges update into the first question with id. Unknown ids are ignored.
// Only the account type of the active user is checked here.
func (e *Engine) EditQuestion(id int, update domain.QuestionUpdate) error {
	if !e.isAdmin() {
		return domain.ErrNotAuthorized
	}
	for i := range e.questions {
		if e.questions[i].ID == id {
			e.questions[i] = update.Apply(e.questions[i])
			return nil
		}
	}
	return nil
}

// RemoveQuestion drops every question with id.
func (e *Engine) RemoveQuestion(id int) error {
	if !e.isAdmin() {
		return domain.ErrNotAuthorized
	}
	kept := e.questions[:0]
	for _, q := range e.questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	e.questions = kept
	return nil
}

// SearchQuestions returns the questions whose text or category contains keyword.
func (e *Engine) SearchQuestions(keyword string) []domain.Question {
	out := []domain.Question{}
	for _, q := range e.questions {
		if strings.Contains(q.Text, keyword) || strings.Contains(q.Category, keyword) {
			out = append(out, q.Clone())
		}
	}
	return out
}

// Questions returns a copy of the whole bank in insertion order.
func (e *Engine) Questions() []domain.Question {
	out := make([]domain.Question, len(e.questions))
	for i, q := range e.questions {
		out[i] = q.Clone()
	}
	return out
}

// StartQuiz resets the score and returns up to opts.NumberQuestions questions
// of opts.Category. opts.Username is not compared with the active user.
func (e *Engine) StartQuiz(opts domain.StartOptions) ([]domain.Question, error) {
	if e.currentUser == nil || !e.currentUser.IsAuthenticated() {
		return nil, domain.ErrInvalidUser
	}

	selected := []domain.Question{}
	for _, q := range e.questions {
		if len(selected) >= opts.NumberQuestions {
			break
		}
		if q.Category == opts.Category {
			selected = append(selected, q.Clone())
		}
	}
	e.currentScore = 0
	return selected, nil
}

// SubmitAnswer scores one point when answer exactly matches the stored answer
// of question id.
func (e *Engine) SubmitAnswer(id int, answer string) {
	for _, q := range e.questions {
		if q.ID == id {
			if q.Answer == answer {
				e.currentScore++
			}
			return
		}
	}
}

// CurrentScore returns the score of the running session.
func (e *Engine) CurrentScore() int {
	return e.currentScore
}

// FinishQuiz reports the session score to board. The score is filed under the
// category of the first question in the bank, not the category the session
// was started with.
func (e *Engine) FinishQuiz(board ScoreBoard) (domain.LeaderboardEntry, error) {
	if e.currentUser == nil {
		return domain.LeaderboardEntry{}, domain.ErrNoUserSet
	}
	if len(e.questions) == 0 {
		return domain.LeaderboardEntry{}, domain.ErrEmptyQuestionBank
	}

	result := domain.LeaderboardEntry{
		Username: e.currentUser.Username(),
		Score:    e.currentScore,
		Category: e.questions[0].Category,
	}
	board.AddScore(result.Category, result.Username, result.Score)
	return result, nil
}
