package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/httpsource"
	"quiz-engine/internal/infra/memory"
	pgloader "quiz-engine/internal/infra/postgres"
	redisinfra "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/profile"
	"quiz-engine/internal/quiz"
	transport "quiz-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// The remote JSON bank is the default; a configured database serves named banks instead.
	var source memory.QuestionSource = httpsource.New(cfg.Quiz.Source, nil, logger)
	sourceName := cfg.Quiz.Source
	if pool != nil {
		source = pgloader.NewQuestionLoader(pool)
		sourceName = bankName(cfg)
	}

	questionTTL := questionCacheTTL(cfg, redisClient != nil)
	var questions app.QuestionRepository
	var profiles profile.Store
	var scores app.ScoreStore
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, source, questionTTL)
		profiles = redisinfra.NewProfileStore(redisClient)
		scores = redisinfra.NewScoreStore(redisClient)
	} else {
		questions = memory.NewQuestionRepository(source, questionTTL)
		profiles = memory.NewProfileStore()
	}

	directory := profile.NewDirectory(profiles)
	if err := registerProfiles(ctx, directory, cfg.Profiles, logger); err != nil {
		return err
	}

	engine := quiz.NewEngine(cfg.Quiz.QuestionLimitPerCategory, logger)
	service := app.NewQuizService(engine, leaderboard.New(), directory, app.Options{
		Questions: questions,
		Scores:    scores,
		Logger:    logger,
	})
	if err := service.RestoreScores(ctx); err != nil {
		logger.Warn("could not restore scores", "err", err)
	}
	loadInitialQuestions(ctx, service, cfg, sourceName, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerProfiles(ctx context.Context, directory *profile.Directory, profiles []config.Profile, logger *slog.Logger) error {
	for _, p := range profiles {
		_, err := directory.Register(ctx, p.Username, p.Email, p.Password, p.AccountType, p.FirstName, p.LastName)
		switch {
		case err == nil:
			logger.Info("profile registered", "username", p.Username, "account_type", p.AccountType)
		case errors.Is(err, domain.ErrUsernameTaken):
			logger.Debug("profile already registered", "username", p.Username)
		default:
			return err
		}
	}
	return nil
}

// loadInitialQuestions fills the bank as the configured admin without leaving
// the admin active. An unreachable source leaves the server running with an
// empty bank.
func loadInitialQuestions(ctx context.Context, service *app.QuizService, cfg config.Config, source string, logger *slog.Logger) {
	admin, ok := cfg.Admin()
	if !ok {
		logger.Warn("no admin profile configured, question bank starts empty")
		return
	}
	if _, err := service.LoadQuestionsAs(ctx, admin.Username, admin.Email, admin.Password, source); err != nil {
		logger.Error("initial question load failed", "username", admin.Username, "err", err)
	}
}

// questionCacheTTL returns how long fetched banks stay cached. redis.ttl
// overrides quiz.ttl for the Redis cache.
func questionCacheTTL(cfg config.Config, useRedis bool) time.Duration {
	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if useRedis {
		ttl = config.TTLDuration(cfg.Redis.TTL, ttl)
	}
	return ttl
}
