package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-engine/internal/domain"
)

// QuestionLoader loads a question bank from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

// NewQuestionLoader returns a loader reading banks through pool.
func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

// LoadQuestions returns the questions of bank in their stored order.
func (l *QuestionLoader) LoadQuestions(ctx context.Context, bank string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, text, options, answer, category FROM questions WHERE bank=$1 ORDER BY position`, bank)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &raw, &q.Answer, &q.Category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionNotFound
	}
	return questions, nil
}
