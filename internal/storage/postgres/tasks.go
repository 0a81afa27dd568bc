package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
)

type taskRepository struct {
	storage *Storage
}

func (r *taskRepository) IsScheduled(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM scheduled_tasks WHERE name=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *taskRepository) Next(ctx context.Context, name string) (*model.ScheduledTask, error) {
	const query = `SELECT name, run_at FROM scheduled_tasks WHERE name=$1`
	var task model.ScheduledTask
	if err := r.storage.pool.QueryRow(ctx, query, name).Scan(&task.Name, &task.RunAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ScheduleOnce(ctx context.Context, name string, at time.Time) (bool, error) {
	const query = `INSERT INTO scheduled_tasks (name, run_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, name, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *taskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledTask, error) {
	const selectQuery = `SELECT name, run_at
                         FROM scheduled_tasks
                         WHERE run_at <= $1
                         ORDER BY run_at
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`

	var tasks []model.ScheduledTask
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, now, limit)
		if err != nil {
			return err
		}

		for rows.Next() {
			var t model.ScheduledTask
			if err := rows.Scan(&t.Name, &t.RunAt); err != nil {
				rows.Close()
				return err
			}
			tasks = append(tasks, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, t := range tasks {
			if _, err := tx.Exec(ctx, `DELETE FROM scheduled_tasks WHERE name=$1`, t.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Clear(ctx context.Context, name string) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM scheduled_tasks WHERE name=$1`, name)
	return err
}
