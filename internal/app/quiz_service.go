package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/profile"
	"quiz-engine/internal/quiz"
)

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	LoadQuestions(ctx context.Context, source string) ([]domain.Question, error)
}

// ScoreStore mirrors finished quiz scores outside the process (Redis, etc).
type ScoreStore interface {
	RecordScore(ctx context.Context, category, username string, score int) error
	AllScores(ctx context.Context) (map[string][]domain.LeaderboardEntry, error)
}

// RankedScoreStore is a ScoreStore that also serves ranked reads.
type RankedScoreStore interface {
	ScoreStore
	TopScores(ctx context.Context, category string, n int) ([]domain.LeaderboardEntry, error)
}

// QuizService contains the quiz use cases. It serializes access to the
// engine, which is single-session and not safe for concurrent use.
type QuizService struct {
	mu        sync.Mutex
	engine    *quiz.Engine
	board     *leaderboard.Leaderboard
	directory *profile.Directory
	questions QuestionRepository
	scores    ScoreStore
	logger    *slog.Logger
}

// Options wires the optional collaborators of a QuizService.
type Options struct {
	// Questions loads banks for LoadQuestions; nil disables loading.
	Questions QuestionRepository
	// Scores mirrors finished scores; nil keeps them in process only.
	Scores ScoreStore
	Logger *slog.Logger
}

// NewQuizService wires the engine to its leaderboard and profile directory.
func NewQuizService(engine *quiz.Engine, board *leaderboard.Leaderboard, directory *profile.Directory, opts Options) *QuizService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &QuizService{
		engine:    engine,
		board:     board,
		directory: directory,
		questions: opts.Questions,
		scores:    opts.Scores,
		logger:    logger,
	}
}

// Login authenticates username and makes it the active user of the engine.
func (s *QuizService) Login(ctx context.Context, username, email, password string) (*profile.UserProfile, error) {
	p, err := s.directory.Login(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetCurrentUser(p); err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "username", username, "account_type", p.AccountType())
	return p, nil
}

// LoadQuestions fetches source and adds every question through the admin-gated
// engine. It returns how many questions were actually stored.
func (s *QuizService) LoadQuestions(ctx context.Context, source string) (int, error) {
	if s.questions == nil {
		return 0, domain.ErrLoadQuestions
	}
	questions, err := s.questions.LoadQuestions(ctx, source)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addQuestionsLocked(source, questions)
}

// LoadQuestionsAs is LoadQuestions run with username as the active user. The
// previous active user, or the lack of one, is restored once the load is done.
func (s *QuizService) LoadQuestionsAs(ctx context.Context, username, email, password, source string) (int, error) {
	if s.questions == nil {
		return 0, domain.ErrLoadQuestions
	}
	p, err := s.directory.Login(ctx, username, email, password)
	if err != nil {
		return 0, err
	}
	questions, err := s.questions.LoadQuestions(ctx, source)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.engine.CurrentUser()
	if err := s.engine.SetCurrentUser(p); err != nil {
		return 0, err
	}
	defer s.restoreUserLocked(previous)
	return s.addQuestionsLocked(source, questions)
}

func (s *QuizService) addQuestionsLocked(source string, questions []domain.Question) (int, error) {
	before := len(s.engine.Questions())
	for _, q := range questions {
		if err := s.engine.AddQuestion(q); err != nil {
			return len(s.engine.Questions()) - before, err
		}
	}
	added := len(s.engine.Questions()) - before
	s.logger.Info("questions loaded", "source", source, "fetched", len(questions), "added", added)
	return added, nil
}

func (s *QuizService) restoreUserLocked(previous quiz.Principal) {
	if previous == nil {
		s.engine.ClearCurrentUser()
		return
	}
	// previous was accepted before and authentication is never revoked.
	_ = s.engine.SetCurrentUser(previous)
}

func (s *QuizService) AddQuestion(q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.AddQuestion(q)
}

func (s *QuizService) EditQuestion(id int, update domain.QuestionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.EditQuestion(id, update)
}

func (s *QuizService) RemoveQuestion(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.RemoveQuestion(id)
}

func (s *QuizService) SearchQuestions(keyword string) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SearchQuestions(keyword)
}

func (s *QuizService) StartQuiz(opts domain.StartOptions) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.StartQuiz(opts)
}

// SubmitAnswer scores one answer and returns the running session score.
func (s *QuizService) SubmitAnswer(questionID int, answer string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SubmitAnswer(questionID, answer)
	return s.engine.CurrentScore()
}

// FinishQuiz files the session score on the leaderboard and mirrors it to the
// score store. A mirror failure is logged, the in-process result stands.
func (s *QuizService) FinishQuiz(ctx context.Context) (domain.LeaderboardEntry, error) {
	s.mu.Lock()
	result, err := s.engine.FinishQuiz(s.board)
	s.mu.Unlock()
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	if s.scores != nil {
		if err := s.scores.RecordScore(ctx, result.Category, result.Username, result.Score); err != nil {
			s.logger.Error("mirror score", "username", result.Username, "category", result.Category, "err", err)
		}
	}
	return result, nil
}

// TopScores returns up to n entries of category, in insertion order unless
// ranked is set. Ranked reads go to the score store when it can rank, so
// they cover every score it holds; the local leaderboard is the fallback.
func (s *QuizService) TopScores(ctx context.Context, category string, n int, ranked bool) []domain.LeaderboardEntry {
	if !ranked {
		return s.board.TopScoresForCategory(category, n)
	}
	if store, ok := s.scores.(RankedScoreStore); ok {
		entries, err := store.TopScores(ctx, category, n)
		if err == nil {
			return entries
		}
		s.logger.Warn("ranked scores unavailable, using local leaderboard", "category", category, "err", err)
	}
	return s.board.RankedScoresForCategory(category, n)
}

func (s *QuizService) UserScores(username string) []domain.LeaderboardEntry {
	return s.board.UserScores(username)
}

// RestoreScores replays the mirrored scores into the in-process leaderboard.
func (s *QuizService) RestoreScores(ctx context.Context) error {
	if s.scores == nil {
		return nil
	}
	all, err := s.scores.AllScores(ctx)
	if err != nil {
		return err
	}
	restored := 0
	for category, entries := range all {
		for _, e := range entries {
			s.board.AddScore(category, e.Username, e.Score)
			restored++
		}
	}
	s.logger.Info("scores restored", "entries", restored)
	return nil
}
