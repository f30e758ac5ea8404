package repository

import (
	"context"
	"time"

	"github.com/daylogapp/daylog/domain"
)

// ActivityRepository serves the per-day completion-count read model behind
// the heatmap. Counts are read from the activity_days rollup table, which
// Refresh rebuilds from the todos table; staleness is bounded by the rollup
// service's interval.
type ActivityRepository interface {
	CountsByDay(ctx context.Context, userID string, since time.Time) ([]domain.ActivityPoint, error)
	Refresh(ctx context.Context) error
}
