package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"wordclash-service/internal/domain"
)

// PackLoader reads question packs from Postgres.
type PackLoader struct {
	pool *pgxpool.Pool
}

func NewPackLoader(pool *pgxpool.Pool) *PackLoader {
	return &PackLoader{pool: pool}
}

func (l *PackLoader) LoadPack(ctx context.Context, packID string) ([]domain.QuestionItem, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, pack_id, prompt, answer FROM questions WHERE pack_id=$1 ORDER BY id`, packID)
	if err != nil {
		return nil, fmt.Errorf("load pack %s: %w", packID, err)
	}
	defer rows.Close()

	var items []domain.QuestionItem
	for rows.Next() {
		var item domain.QuestionItem
		if err := rows.Scan(&item.ID, &item.PackID, &item.Prompt, &item.Answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pack %s: %w", packID, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrPackNotFound
	}
	return items, nil
}
