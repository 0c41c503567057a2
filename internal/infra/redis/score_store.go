package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/domain"
)

// ScoreStore mirrors best scores into one sorted set per category.
// ZADD GT keeps the stored score monotonic, like the in-memory leaderboard.
type ScoreStore struct {
	client *redis.Client
}

// NewScoreStore returns a ScoreStore backed by client.
func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

// RecordScore stores score for username unless a higher one is already stored.
func (s *ScoreStore) RecordScore(ctx context.Context, category, username string, score int) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, categoriesKey(), category)
	pipe.ZAddGT(ctx, leaderboardKey(category), redis.Z{Score: float64(score), Member: username})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	return nil
}

// TopScores returns the n best entries of category, highest first.
func (s *ScoreStore) TopScores(ctx context.Context, category string, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	return s.rankedRange(ctx, category, int64(n-1))
}

func (s *ScoreStore) rankedRange(ctx context.Context, category string, stop int64) ([]domain.LeaderboardEntry, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(category), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		entries = append(entries, domain.LeaderboardEntry{
			Username: fmt.Sprint(z.Member),
			Score:    int(z.Score),
			Category: category,
		})
	}
	return entries, nil
}

// AllScores returns every stored entry grouped by category, each group ranked.
func (s *ScoreStore) AllScores(ctx context.Context) (map[string][]domain.LeaderboardEntry, error) {
	categories, err := s.client.SMembers(ctx, categoriesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make(map[string][]domain.LeaderboardEntry, len(categories))
	for _, category := range categories {
		entries, err := s.rankedRange(ctx, category, -1)
		if err != nil {
			return nil, err
		}
		out[category] = entries
	}
	return out, nil
}
