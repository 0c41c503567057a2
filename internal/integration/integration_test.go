package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/crypto/bcrypt"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	pgloader "quiz-engine/internal/infra/postgres"
	pgmigrations "quiz-engine/internal/infra/postgres/migrations"
	infraredis "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/profile"
	"quiz-engine/internal/quiz"
	"quiz-engine/internal/testutil"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, "trivia", sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	directory := profile.NewDirectoryWithCost(infraredis.NewProfileStore(redisClient), bcrypt.MinCost)
	if _, err := directory.Register(ctx, "admin", "admin@example.com", "adminpw", domain.AccountTypeAdmin, "Ada", "Admin"); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if _, err := directory.Register(ctx, "bob", "bob@example.com", "bobpw", domain.AccountTypeUser, "Bob", "Player"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	questions := infraredis.NewQuestionRepository(redisClient, pgloader.NewQuestionLoader(pool), 5*time.Minute)
	scores := infraredis.NewScoreStore(redisClient)
	service := app.NewQuizService(quiz.NewEngine(quiz.DefaultQuestionLimit, testutil.NopLogger()), leaderboard.New(), directory, app.Options{
		Questions: questions,
		Scores:    scores,
		Logger:    testutil.NopLogger(),
	})

	if added, err := service.LoadQuestionsAs(ctx, "admin", "admin@example.com", "adminpw", "trivia"); err != nil || added != 3 {
		t.Fatalf("load questions: added=%d err=%v", added, err)
	}

	if _, err := service.Login(ctx, "bob", "bob@example.com", "bobpw"); err != nil {
		t.Fatalf("bob login: %v", err)
	}
	qs, err := service.StartQuiz(domain.StartOptions{NumberQuestions: 2, Category: "Math", Username: "bob"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, q := range qs {
		service.SubmitAnswer(q.ID, q.Answer)
	}
	result, err := service.FinishQuiz(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Score != 2 || result.Category != "Math" {
		t.Fatalf("expected bob to score 2 in Math, got %+v", result)
	}

	top, err := scores.TopScores(ctx, "Math", 10)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(top) != 1 || top[0].Username != "bob" || top[0].Score != 2 {
		t.Fatalf("expected mirrored score, got %+v", top)
	}
	if ranked := service.TopScores(ctx, "Math", 10, true); len(ranked) != 1 || ranked[0].Category != "Math" {
		t.Fatalf("expected ranked read from redis, got %+v", ranked)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://quiz:quizpass@%s/quizdb?sslmode=disable", addr), cleanup
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")
	return "redis://" + addr, cleanup
}

// startContainer runs req and returns host:port of the mapped port.
func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, port nat.Port) (string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	cleanup := func() { _ = container.Terminate(ctx) }

	host, err := container.Host(ctx)
	if err != nil {
		cleanup()
		t.Fatalf("%s host: %v", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		cleanup()
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return net.JoinHostPort(host, mapped.Port()), cleanup
}

func seedBank(t *testing.T, ctx context.Context, dsn, bank string, questions []domain.Question) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := pgloader.NewQuestionWriter(db).ReplaceBank(ctx, bank, questions); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Answer: "4", Category: "Math"},
		{ID: 2, Text: "What is 3 * 3?", Options: []string{"6", "9"}, Answer: "9", Category: "Math"},
		{ID: 2, Text: "Largest planet?", Options: []string{"Earth", "Jupiter"}, Answer: "Jupiter", Category: "Science"},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
