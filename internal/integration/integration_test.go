package integration

import (
	"context"
	"database/sql"
	"encoding/json"
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

	"trivia-session-service/internal/adaptive"
	"trivia-session-service/internal/app"
	"trivia-session-service/internal/content"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/history"
	"trivia-session-service/internal/infra/failover"
	"trivia-session-service/internal/infra/memory"
	pgloader "trivia-session-service/internal/infra/postgres"
	pgmigrations "trivia-session-service/internal/infra/postgres/migrations"
	infraredis "trivia-session-service/internal/infra/redis"
	"trivia-session-service/internal/plausibility"
	"trivia-session-service/internal/profile"
	"trivia-session-service/internal/telemetry"
)

func TestFullRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCollection(t, ctx, pgURL, sampleCollection())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := infraredis.NewCollectionCache(redisClient, pgloader.NewCollectionLoader(pool), 5*time.Minute)

	fallback := memory.NewSessionStore(time.Minute)
	defer fallback.Stop()
	store := failover.NewSessionStore(infraredis.NewSessionStore(redisClient), fallback)

	cfg := app.DefaultConfig()
	cfg.RoundLength = 3

	recent, err := history.New(64, 30)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	service := app.NewSessionService(
		store,
		content.NewSource(loader, cfg.RoundLength),
		profile.NewStore(),
		telemetry.NewRedisSink(redisClient),
		recent,
		adaptive.NewSelector(nil),
		plausibility.NewDetector(nil),
		cfg,
	)

	session, degraded, err := service.StartSession(ctx, 7, "general-knowledge", false)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if degraded {
		t.Fatalf("redis-backed session must not be degraded")
	}
	if len(session.Questions) != 3 {
		t.Fatalf("expected a 3-question round, got %d", len(session.Questions))
	}

	for i := 0; i < 2; i++ {
		q := session.Questions[i]
		opt := q.CorrectOption()
		answer, _, err := service.SubmitAnswer(ctx, session.ID, q.ID, &opt, 0, nil)
		if err != nil {
			t.Fatalf("submit %s: %v", q.ID, err)
		}
		if !answer.Correct || answer.TotalPoints != 100 {
			t.Fatalf("expected 100 points, got %+v", answer)
		}
	}

	final := session.Questions[2]
	opt := final.CorrectOption()
	wager := 100
	answer, _, err := service.SubmitAnswer(ctx, session.ID, final.ID, &opt, 10, &wager)
	if err != nil {
		t.Fatalf("final submit: %v", err)
	}
	if answer.TotalPoints != 100 {
		t.Fatalf("expected the wager paid out, got %+v", answer)
	}

	results, err := service.Results(ctx, session.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.TotalPoints != 300 || results.CorrectCount != 3 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results.WagerResult == nil || !results.WagerResult.Won {
		t.Fatalf("expected a won wager, got %+v", results.WagerResult)
	}
	if results.Reward == nil {
		t.Fatalf("expected a progression reward")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
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
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
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

func seedCollection(t *testing.T, ctx context.Context, dsn string, col domain.Collection) {
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

	data, err := json.Marshal(col.Questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO collections (id, name, slug, data) VALUES (?, ?, ?, ?::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		col.Meta.ID, col.Meta.Name, col.Meta.Slug, string(data)); err != nil {
		t.Fatalf("insert collection: %v", err)
	}
}

func sampleCollection() domain.Collection {
	col := domain.Collection{
		Meta: domain.CollectionMeta{ID: "general-knowledge", Name: "General Knowledge", Slug: "general-knowledge"},
	}
	difficulties := []string{"easy", "easy", "medium", "hard"}
	for i, d := range difficulties {
		col.Questions = append(col.Questions, domain.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("Question %d", i+1),
			Options: []domain.Option{
				{ID: "o1", Text: "Wrong"},
				{ID: "o2", Text: "Right", Correct: true},
			},
			Difficulty: d,
		})
	}
	return col
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
