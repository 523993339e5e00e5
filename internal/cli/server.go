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

	"trivia-session-service/internal/adaptive"
	"trivia-session-service/internal/app"
	"trivia-session-service/internal/config"
	"trivia-session-service/internal/content"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/history"
	"trivia-session-service/internal/infra/failover"
	"trivia-session-service/internal/infra/memory"
	pgloader "trivia-session-service/internal/infra/postgres"
	infraredis "trivia-session-service/internal/infra/redis"
	"trivia-session-service/internal/plausibility"
	"trivia-session-service/internal/profile"
	"trivia-session-service/internal/telemetry"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia session server",
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
		defer pool.Close()
	}

	svcCfg := app.DefaultConfig()
	svcCfg.SessionTTL = config.TTLDuration(cfg.Session.TTL, svcCfg.SessionTTL)
	if cfg.Session.RoundLength > 0 {
		svcCfg.RoundLength = cfg.Session.RoundLength
	}
	if cfg.Session.QuestionDuration > 0 {
		svcCfg.QuestionDuration = cfg.Session.QuestionDuration
	}

	var loader content.Loader = memory.NewStaticCollectionLoader(sampleCollections())
	if pool != nil {
		loader = pgloader.NewCollectionLoader(pool)
	}
	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	if redisClient != nil {
		loader = infraredis.NewCollectionCache(redisClient, loader, contentTTL)
	} else {
		loader = memory.NewCollectionCache(loader, contentTTL)
	}
	source := content.NewSource(loader, svcCfg.RoundLength)

	sweepInterval := config.TTLDuration(cfg.Session.SweepInterval, time.Minute)
	fallbackStore := memory.NewSessionStore(sweepInterval)
	defer fallbackStore.Stop()

	var store app.SessionStore = fallbackStore
	if redisClient != nil {
		store = failover.NewSessionStore(infraredis.NewSessionStore(redisClient), fallbackStore)
	} else {
		log.Printf("no redis configured; running on the in-process store, sessions will not survive a restart")
	}

	maxUsers := cfg.History.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 10000
	}
	perUser := cfg.History.PerUser
	if perUser <= 0 {
		perUser = 30
	}
	recent, err := history.New(maxUsers, perUser)
	if err != nil {
		return err
	}

	var sink app.Telemetry = telemetry.NewLogSink()
	if redisClient != nil {
		sink = telemetry.NewRedisSink(redisClient)
	}

	service := app.NewSessionService(
		store,
		source,
		profile.NewStore(),
		sink,
		recent,
		adaptive.NewSelector(nil),
		plausibility.NewDetector(nil),
		svcCfg,
	)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia session service on :%s", finalPort)
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

// sampleCollections provides a minimal demo collection; production loads from Postgres.
func sampleCollections() map[string]domain.Collection {
	questions := []domain.Question{
		{
			ID:     "q1",
			Prompt: "What is 2 + 2?",
			Options: []domain.Option{
				{ID: "o1", Text: "3"},
				{ID: "o2", Text: "4", Correct: true},
				{ID: "o3", Text: "5"},
			},
			Difficulty: "easy",
		},
		{
			ID:     "q2",
			Prompt: "Which planet is known as the Red Planet?",
			Options: []domain.Option{
				{ID: "o1", Text: "Venus"},
				{ID: "o2", Text: "Mars", Correct: true},
				{ID: "o3", Text: "Jupiter"},
			},
			Difficulty: "easy",
		},
		{
			ID:     "q3",
			Prompt: "What is the square root of 144?",
			Options: []domain.Option{
				{ID: "o1", Text: "11"},
				{ID: "o2", Text: "12", Correct: true},
				{ID: "o3", Text: "14"},
			},
			Difficulty: "medium",
		},
		{
			ID:     "q4",
			Prompt: "In what year did the Berlin Wall fall?",
			Options: []domain.Option{
				{ID: "o1", Text: "1987"},
				{ID: "o2", Text: "1989", Correct: true},
				{ID: "o3", Text: "1991"},
			},
			Difficulty: "hard",
		},
	}
	return map[string]domain.Collection{
		"general-knowledge": {
			Meta: domain.CollectionMeta{
				ID:   "general-knowledge",
				Name: "General Knowledge",
				Slug: "general-knowledge",
			},
			Questions: questions,
		},
	}
}
