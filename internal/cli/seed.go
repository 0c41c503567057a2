package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/httpsource"
	"quiz-engine/internal/infra/postgres"
)

// NewSeedCmd copies a remote question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var url, bank string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fetch questions from a URL and store them as a Postgres question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, url, bank)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "question JSON URL (defaults to the public bank)")
	cmd.Flags().StringVar(&bank, "bank", "", "bank name to write (defaults to quiz.bank)")
	return cmd
}

func runSeed(ctx context.Context, configPath, url, bank string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if bank == "" {
		bank = bankName(cfg)
	}

	questions, err := httpsource.New(url, nil, logger).LoadQuestions(ctx, "")
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewQuestionWriter(db).ReplaceBank(ctx, bank, questions); err != nil {
		return fmt.Errorf("seed bank %q: %w", bank, err)
	}
	logger.Info("question bank seeded", "bank", bank, "questions", len(questions))
	return nil
}

func bankName(cfg config.Config) string {
	if cfg.Quiz.Bank != "" {
		return cfg.Quiz.Bank
	}
	return "default"
}
