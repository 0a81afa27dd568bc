package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
)

type transientRepository struct {
	storage *Storage
}

func (r *transientRepository) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM transients WHERE key=$1 AND expires_at > $2`
	var value []byte
	if err := r.storage.pool.QueryRow(ctx, query, key, r.storage.clock()).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if value == nil {
		return nil, domainErrors.ErrNotFound
	}
	return value, nil
}

func (r *transientRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const query = `INSERT INTO transients (key, value, expires_at) VALUES ($1, $2, $3)
                   ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	_, err := r.storage.pool.Exec(ctx, query, key, value, r.storage.clock().Add(ttl))
	return err
}

func (r *transientRepository) Delete(ctx context.Context, key string) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM transients WHERE key=$1`, key)
	return err
}

// Update locks the row for key so concurrent writers are applied one after another.
func (r *transientRepository) Update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error {
	const (
		ensureQuery = `INSERT INTO transients (key, value, expires_at) VALUES ($1, NULL, $2) ON CONFLICT (key) DO NOTHING`
		lockQuery   = `SELECT value, expires_at FROM transients WHERE key=$1 FOR UPDATE`
		writeQuery  = `UPDATE transients SET value=$2, expires_at=$3 WHERE key=$1`
		deleteQuery = `DELETE FROM transients WHERE key=$1`
	)

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		now := r.storage.clock()
		if _, err := tx.Exec(ctx, ensureQuery, key, now); err != nil {
			return err
		}

		var (
			current   []byte
			expiresAt time.Time
		)
		if err := tx.QueryRow(ctx, lockQuery, key).Scan(&current, &expiresAt); err != nil {
			return err
		}
		if !expiresAt.After(now) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		if next == nil {
			_, err = tx.Exec(ctx, deleteQuery, key)
			return err
		}
		_, err = tx.Exec(ctx, writeQuery, key, next, now.Add(ttl))
		return err
	})
}
