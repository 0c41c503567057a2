// Package leaderboard keeps the best score of every user per quiz category.
package leaderboard

import (
	"sort"
	"sync"

	"quiz-engine/internal/domain"
)

type entry struct {
	username string
	score    int
}

// Leaderboard stores at most one entry per (category, username). Entries keep
// the order in which users first scored; raising a score updates it in place.
type Leaderboard struct {
	mu         sync.RWMutex
	categories []string
	scores     map[string][]*entry
}

// New returns an empty leaderboard.
func New() *Leaderboard {
	return &Leaderboard{scores: make(map[string][]*entry)}
}

// AddScore records score for username in category. An existing entry is only
// replaced by a strictly greater score.
func (l *Leaderboard) AddScore(category, username string, score int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, ok := l.scores[category]
	if !ok {
		l.categories = append(l.categories, category)
	}
	for _, e := range entries {
		if e.username == username {
			if score > e.score {
				e.score = score
			}
			return
		}
	}
	l.scores[category] = append(entries, &entry{username: username, score: score})
}

// TopScoresForCategory returns the first n entries of category in insertion
// order. Entries are not ranked; see RankedScoresForCategory.
func (l *Leaderboard) TopScoresForCategory(category string, n int) []domain.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return truncate(l.entriesLocked(category), n)
}

// RankedScoresForCategory returns the n best entries of category, highest
// score first. Ties keep insertion order.
func (l *Leaderboard) RankedScoresForCategory(category string, n int) []domain.LeaderboardEntry {
	l.mu.RLock()
	all := l.entriesLocked(category)
	l.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})
	return truncate(all, n)
}

// UserScores returns username's entry in every category, tagged with the
// category and sorted by score descending.
func (l *Leaderboard) UserScores(username string) []domain.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.LeaderboardEntry
	for _, category := range l.categories {
		for _, e := range l.scores[category] {
			if e.username == username {
				out = append(out, domain.LeaderboardEntry{
					Username: e.username,
					Score:    e.score,
					Category: category,
				})
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// FormatEntry renders an entry as a human readable sentence.
func (l *Leaderboard) FormatEntry(e domain.LeaderboardEntry) string {
	return e.String()
}

func (l *Leaderboard) entriesLocked(category string) []domain.LeaderboardEntry {
	entries := l.scores[category]
	out := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.LeaderboardEntry{Username: e.username, Score: e.score})
	}
	return out
}

func truncate(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if n < len(entries) {
		return entries[:n]
	}
	return entries
}
