package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-engine/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	Bank     string   `bun:"bank,pk"`
	ID       int      `bun:"id,notnull"`
	Position int      `bun:"position,pk"`
	Text     string   `bun:"text,notnull"`
	Options  []string `bun:"options,type:jsonb,notnull"`
	Answer   string   `bun:"answer,notnull"`
	Category string   `bun:"category,notnull"`
}

// QuestionWriter stores question banks through bun.
type QuestionWriter struct {
	db *bun.DB
}

// NewQuestionWriter returns a writer storing banks through db.
func NewQuestionWriter(db *bun.DB) *QuestionWriter {
	return &QuestionWriter{db: db}
}

// ReplaceBank swaps the whole content of bank for questions in one transaction.
// Every question is kept in order, including ones that share an id.
func (w *QuestionWriter) ReplaceBank(ctx context.Context, bank string, questions []domain.Question) error {
	rows := questionRows(bank, questions)

	return w.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("bank = ?", bank).Exec(ctx); err != nil {
			return fmt.Errorf("clear bank: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func questionRows(bank string, questions []domain.Question) []questionRow {
	rows := make([]questionRow, 0, len(questions))
	for i, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		rows = append(rows, questionRow{
			Bank:     bank,
			ID:       q.ID,
			Position: i,
			Text:     q.Text,
			Options:  options,
			Answer:   q.Answer,
			Category: q.Category,
		})
	}
	return rows
}
