package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
)

type optionRepository struct {
	storage *Storage
}

func (r *optionRepository) Get(ctx context.Context, name string) ([]byte, error) {
	const query = `SELECT value FROM options WHERE name=$1`
	var value []byte
	if err := r.storage.pool.QueryRow(ctx, query, name).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *optionRepository) Set(ctx context.Context, name string, value []byte) error {
	const query = `INSERT INTO options (name, value) VALUES ($1, $2)
                   ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := r.storage.pool.Exec(ctx, query, name, value)
	return err
}

func (r *optionRepository) Add(ctx context.Context, name string, value []byte) (bool, error) {
	const query = `INSERT INTO options (name, value) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, name, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
