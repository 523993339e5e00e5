package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-session-service/internal/domain"
)

// CollectionLoader loads collection JSONB from Postgres.
type CollectionLoader struct {
	pool *pgxpool.Pool
}

func NewCollectionLoader(pool *pgxpool.Pool) *CollectionLoader {
	return &CollectionLoader{pool: pool}
}

func (l *CollectionLoader) LoadCollection(ctx context.Context, collectionID string) (domain.Collection, error) {
	var (
		id, name, slug string
		raw            []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, name, slug, data FROM collections WHERE id=$1 OR slug=$1`,
		collectionID,
	).Scan(&id, &name, &slug, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collection{}, domain.ErrCollectionNotFound
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("load collection: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.Collection{}, fmt.Errorf("unmarshal collection: %w", err)
	}
	return domain.Collection{
		Meta:      domain.CollectionMeta{ID: id, Name: name, Slug: slug},
		Questions: questions,
	}, nil
}
