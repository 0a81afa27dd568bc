package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/codguard/internal/domain/model"
)

type blockEventRepository struct {
	storage *Storage
}

func (r *blockEventRepository) Append(ctx context.Context, event model.BlockEvent, cutoff time.Time) (int, error) {
	var retained int
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertQuery = `INSERT INTO block_events (occurred_at, email, rating) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, insertQuery, event.Timestamp, event.Email, event.Rating); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM block_events WHERE occurred_at < $1`, cutoff); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM block_events`).Scan(&retained)
	})
	if err != nil {
		return 0, err
	}
	return retained, nil
}

func (r *blockEventRepository) List(ctx context.Context, since time.Time) ([]model.BlockEvent, error) {
	const query = `SELECT occurred_at, email, rating
                   FROM block_events WHERE occurred_at > $1 ORDER BY occurred_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.BlockEvent
	for rows.Next() {
		var e model.BlockEvent
		if err := rows.Scan(&e.Timestamp, &e.Email, &e.Rating); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
