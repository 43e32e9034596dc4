package postgres

import (
	"context"
	"fmt"

	"trivia-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ActivityLoader reads the activity catalog from Postgres.
type ActivityLoader struct {
	pool *pgxpool.Pool
}

func NewActivityLoader(pool *pgxpool.Pool) *ActivityLoader {
	return &ActivityLoader{pool: pool}
}

func (l *ActivityLoader) LoadActivities(ctx context.Context) ([]domain.Activity, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, title, consumption_wh, source FROM activities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	defer rows.Close()

	var catalog []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.ID, &activity.Title, &activity.Consumption, &activity.Source); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		catalog = append(catalog, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read activities: %w", err)
	}
	return catalog, nil
}
