package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	pginfra "quiz-engine/internal/infra/postgres"
	pgmigrations "quiz-engine/internal/infra/postgres/migrations"
	redisinfra "quiz-engine/internal/infra/redis"
)

func TestSessionLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuiz(t, ctx, pgURL, sampleQuiz())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	provider := redisinfra.NewQuizCache(redisClient, pginfra.NewQuizProvider(pool), 5*time.Minute)
	store := pginfra.NewSessionStore(pool)
	service := app.NewSessionManager(store, provider, app.NewProgressBroker())

	session, err := service.Start(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", session.TotalQuestions)
	}

	result, err := service.SubmitAnswer(ctx, session.ID, 0, "  PARIS ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.IsCorrect || result.CurrentScore != 50.0 {
		t.Fatalf("expected correct answer at 50%%, got %+v", result)
	}

	result, err = service.SubmitAnswer(ctx, session.ID, 1, "wrong")
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if result.IsCorrect || result.CurrentScore != 50.0 {
		t.Fatalf("expected wrong answer to keep 50%%, got %+v", result)
	}

	if _, err := service.SubmitAnswer(ctx, session.ID, 0, "Paris"); !errors.Is(err, domain.ErrDuplicateAnswer) {
		t.Fatalf("expected duplicate answer against postgres, got %v", err)
	}

	completed, err := service.Complete(ctx, session.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.StatusCompleted || completed.Score != 50.0 || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed session: %+v", completed)
	}

	if _, err := service.Complete(ctx, session.ID); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected second complete to fail, got %v", err)
	}

	health := service.Health(ctx)
	if health.Status != "ok" {
		t.Fatalf("expected healthy dependencies, got %+v", health)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, dsn string, quiz domain.Quiz) {
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

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{
				Prompt:        "What is the capital of France?",
				CorrectAnswer: "Paris",
				Explanation:   "Paris has been the capital since 987.",
			},
			{
				Prompt:        "What is 2 + 2?",
				CorrectAnswer: "4",
				Explanation:   "Basic arithmetic.",
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
