package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

var _ app.RankedScoreStore = (*ScoreStore)(nil)

type StoreSuite struct {
	suite.Suite
	mini   *miniredis.Miniredis
	client *redis.Client
	ctx    context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	_ = s.client.Close()
}

// Question cache

func (s *StoreSuite) TestQuestionRepositoryCachesInRedis() {
	source := &countingSource{
		QuestionSource: memory.NewStaticQuestionSource(map[string][]domain.Question{
			"bank-1": sampleQuestions(),
		}),
	}
	repo := NewQuestionRepository(s.client, source, time.Minute)

	qs, err := repo.LoadQuestions(s.ctx, "bank-1")
	s.Require().NoError(err)
	s.Equal(sampleQuestions(), qs)
	s.Equal(1, source.calls)
	s.True(s.mini.Exists("quiz:questions:bank-1"))

	// Second call should hit cache, source not incremented.
	qs, err = repo.LoadQuestions(s.ctx, "bank-1")
	s.Require().NoError(err)
	s.Equal(sampleQuestions(), qs)
	s.Equal(1, source.calls)
}

func (s *StoreSuite) TestQuestionRepositoryExpires() {
	source := &countingSource{
		QuestionSource: memory.NewStaticQuestionSource(map[string][]domain.Question{
			"bank-1": sampleQuestions(),
		}),
	}
	repo := NewQuestionRepository(s.client, source, time.Minute)

	_, err := repo.LoadQuestions(s.ctx, "bank-1")
	s.Require().NoError(err)
	s.mini.FastForward(2 * time.Minute)

	_, err = repo.LoadQuestions(s.ctx, "bank-1")
	s.Require().NoError(err)
	s.Equal(2, source.calls)
}

func (s *StoreSuite) TestQuestionRepositoryPropagatesSourceError() {
	repo := NewQuestionRepository(s.client, memory.NewStaticQuestionSource(nil), time.Minute)
	_, err := repo.LoadQuestions(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrQuestionNotFound)
	s.False(s.mini.Exists("quiz:questions:missing"))
}

// Profiles

func (s *StoreSuite) TestProfileStore() {
	store := NewProfileStore(s.client)
	rec := domain.ProfileRecord{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
		AccountType:  domain.AccountTypeAdmin,
	}

	_, err := store.Get(s.ctx, "alice")
	s.ErrorIs(err, domain.ErrProfileNotFound)

	s.Require().NoError(store.Create(s.ctx, rec))
	s.ErrorIs(store.Create(s.ctx, rec), domain.ErrUsernameTaken)

	got, err := store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(rec, got)
	s.True(s.mini.Exists("quiz:profile:alice"))
}

// Scores

func (s *StoreSuite) TestScoreStoreKeepsBest() {
	store := NewScoreStore(s.client)
	s.Require().NoError(store.RecordScore(s.ctx, "Math", "user1", 100))
	s.Require().NoError(store.RecordScore(s.ctx, "Math", "user1", 50))
	s.Require().NoError(store.RecordScore(s.ctx, "Math", "user2", 300))

	top, err := store.TopScores(s.ctx, "Math", 10)
	s.Require().NoError(err)
	s.Equal([]domain.LeaderboardEntry{
		{Username: "user2", Score: 300, Category: "Math"},
		{Username: "user1", Score: 100, Category: "Math"},
	}, top)

	top, err = store.TopScores(s.ctx, "Math", 1)
	s.Require().NoError(err)
	s.Len(top, 1)

	top, err = store.TopScores(s.ctx, "Math", 0)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *StoreSuite) TestScoreStoreAllScores() {
	store := NewScoreStore(s.client)
	s.Require().NoError(store.RecordScore(s.ctx, "Math", "user1", 100))
	s.Require().NoError(store.RecordScore(s.ctx, "Science", "user1", 200))

	all, err := store.AllScores(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal([]domain.LeaderboardEntry{{Username: "user1", Score: 200, Category: "Science"}}, all["Science"])
}

type countingSource struct {
	QuestionSource
	calls int
}

func (c *countingSource) LoadQuestions(ctx context.Context, source string) ([]domain.Question, error) {
	c.calls++
	return c.QuestionSource.LoadQuestions(ctx, source)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:       1,
			Text:     "What is 2 + 2?",
			Options:  []string{"3", "4"},
			Answer:   "4",
			Category: "Math",
		},
	}
}
