package memory

import (
	"context"
	"sync"

	"quiz-engine/internal/domain"
)

// ProfileStore is an in-memory implementation of profile.Store.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.ProfileRecord
}

// NewProfileStore returns an empty in-process store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]domain.ProfileRecord),
	}
}

func (s *ProfileStore) Create(_ context.Context, rec domain.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[rec.Username]; ok {
		return domain.ErrUsernameTaken
	}
	s.profiles[rec.Username] = rec
	return nil
}

func (s *ProfileStore) Get(_ context.Context, username string) (domain.ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.profiles[username]
	if !ok {
		return domain.ProfileRecord{}, domain.ErrProfileNotFound
	}
	return rec, nil
}
