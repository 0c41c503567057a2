package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/domain"
)

// ProfileStore keeps profile records as JSON strings, one key per username.
type ProfileStore struct {
	client *redis.Client
}

// NewProfileStore returns a ProfileStore backed by client.
func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// Create uses SETNX so two registrations of the same username cannot both win.
func (s *ProfileStore) Create(ctx context.Context, rec domain.ProfileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, profileKey(rec.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUsernameTaken
	}
	return nil
}

func (s *ProfileStore) Get(ctx context.Context, username string) (domain.ProfileRecord, error) {
	data, err := s.client.Get(ctx, profileKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ProfileRecord{}, domain.ErrProfileNotFound
		}
		return domain.ProfileRecord{}, err
	}
	var rec domain.ProfileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.ProfileRecord{}, err
	}
	return rec, nil
}
