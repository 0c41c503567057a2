// Package httpsource loads question banks published as JSON over HTTP.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"quiz-engine/internal/domain"
)

// DefaultURL is the public question bank used when no URL is configured.
const DefaultURL = "https://danny-public.s3.amazonaws.com/quiz_questions.json"

// Source fetches a JSON array of questions. Every failure is reported as
// domain.ErrLoadQuestions; the cause is only logged.
type Source struct {
	defaultURL string
	client     *http.Client
	logger     *slog.Logger
}

// New returns a Source that falls back to defaultURL (or DefaultURL when empty).
func New(defaultURL string, client *http.Client, logger *slog.Logger) *Source {
	if defaultURL == "" {
		defaultURL = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{defaultURL: defaultURL, client: client, logger: logger}
}

// LoadQuestions fetches the questions at url, or at the default URL when url is empty.
func (s *Source) LoadQuestions(ctx context.Context, url string) ([]domain.Question, error) {
	if url == "" {
		url = s.defaultURL
	}
	questions, err := s.fetch(ctx, url)
	if err != nil {
		s.logger.Error("error loading questions", "url", url, "err", err)
		return nil, domain.ErrLoadQuestions
	}
	return questions, nil
}

func (s *Source) fetch(ctx context.Context, url string) ([]domain.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var questions []domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}
