package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/domain"
)

// QuestionSource fetches a question set (remote URL, database bank, ...).
type QuestionSource interface {
	LoadQuestions(ctx context.Context, source string) ([]domain.Question, error)
}

// QuestionRepository caches question sets in Redis and falls back to the source on a miss.
// A set is stored as a JSON array: SET quiz:questions:{source} [...] EX ttl
type QuestionRepository struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

// NewQuestionRepository caches source in Redis for ttl plus up to 10% jitter.
func NewQuestionRepository(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) LoadQuestions(ctx context.Context, source string) ([]domain.Question, error) {
	if qs, ok := r.cached(ctx, source); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(source, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.cached(ctx, source); ok {
			return qs, nil
		}

		qs, err := r.source.LoadQuestions(ctx, source)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(qs); err == nil {
			_ = r.client.Set(ctx, questionsKey(source), data, r.ttlWithJitter()).Err()
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cached(ctx context.Context, source string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, questionsKey(source)).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
