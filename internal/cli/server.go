package cli

import (
	"context"
	"log"
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
	"quiz-engine/internal/infra/memory"
	pginfra "quiz-engine/internal/infra/postgres"
	"quiz-engine/internal/infra/quizapi"
	redisinfra "quiz-engine/internal/infra/redis"
	transport "quiz-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz engine server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var provider app.QuizProvider
	switch {
	case cfg.QuizAPI.BaseURL != "":
		provider = quizapi.NewClient(cfg.QuizAPI.BaseURL, config.TTLDuration(cfg.QuizAPI.Timeout, 30*time.Second))
	case pool != nil:
		provider = pginfra.NewQuizProvider(pool)
	default:
		provider = memory.NewStaticProvider(sampleQuizzes())
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		provider = redisinfra.NewQuizCache(redisClient, provider, quizTTL)
	} else {
		provider = memory.NewQuizCache(provider, quizTTL)
	}

	// Sessions prefer the durable document store; Redis is the middle
	// ground, memory the dev fallback.
	var store app.SessionStore
	switch {
	case pool != nil:
		store = pginfra.NewSessionStore(pool)
	case redisClient != nil:
		store = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	default:
		store = memory.NewSessionStore()
	}

	broker := app.NewProgressBroker()
	service := app.NewSessionManager(store, provider, broker)
	restHandler := transport.NewRestHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	restHandler.Register(mux)
	mux.HandleFunc("GET /ws/session/{id}", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds the static provider for local runs without a
// quiz service or database behind it.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					Prompt:        "What is the capital of France?",
					CorrectAnswer: "Paris",
					Explanation:   "Paris has been the capital of France since 987.",
				},
				{
					Prompt:        "What is 2 + 2?",
					CorrectAnswer: "4",
					Explanation:   "Basic arithmetic.",
				},
			},
		},
	}
}
