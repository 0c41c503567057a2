package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// QuestionSource fetches a question set (remote URL, database bank, ...).
type QuestionSource interface {
	LoadQuestions(ctx context.Context, source string) ([]domain.Question, error)
}

// QuestionRepository caches question sets with TTL to avoid repeated fetches.
type QuestionRepository struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

// NewQuestionRepository caches source in memory for ttl plus up to 10% jitter.
func NewQuestionRepository(source QuestionSource, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (r *QuestionRepository) LoadQuestions(ctx context.Context, source string) ([]domain.Question, error) {
	if qs, ok := r.cached(source, r.clock()); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(source, func() (interface{}, error) {
		now := r.clock()
		if qs, ok := r.cached(source, now); ok {
			return qs, nil
		}

		qs, err := r.source.LoadQuestions(ctx, source)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[source] = cachedQuestions{
			questions: cloneQuestions(qs),
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(source string, now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[source]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSource serves fixed question sets keyed by source (useful for tests/demos).
type StaticQuestionSource struct {
	sets map[string][]domain.Question
}

// NewStaticQuestionSource serves sets keyed by source name.
func NewStaticQuestionSource(sets map[string][]domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{sets: sets}
}

func (s *StaticQuestionSource) LoadQuestions(_ context.Context, source string) ([]domain.Question, error) {
	if qs, ok := s.sets[source]; ok {
		return cloneQuestions(qs), nil
	}
	return nil, domain.ErrQuestionNotFound
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
