package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates the Postgres-backed completion-count read model.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) CountsByDay(ctx context.Context, userID string, since time.Time) ([]domain.ActivityPoint, error) {
	const query = `
	SELECT to_char(day, 'YYYY-MM-DD'), count
	FROM activity_days
	WHERE user_id = $1 AND day >= $2::date
	ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.ActivityPoint
	for rows.Next() {
		var p domain.ActivityPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Refresh rebuilds the rollup from the todos table in one transaction. A full
// rebuild keeps deletions and un-toggles correct without tracking deltas.
func (r *activityRepository) Refresh(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM activity_days`); err != nil {
		return err
	}

	const rebuild = `
	INSERT INTO activity_days (user_id, day, count)
	SELECT user_id, completed_at::date, COUNT(*)
	FROM todos
	WHERE is_completed AND completed_at IS NOT NULL
	GROUP BY user_id, completed_at::date
	`
	if _, err := tx.Exec(ctx, rebuild); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
