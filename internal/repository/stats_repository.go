package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// StatusCount is one row of the per-status ticket aggregate.
type StatusCount struct {
	Status domain.TicketStatus `json:"status"`
	Count  int64               `json:"count"`
}

// StatsRepository computes read-only reporting aggregates in SQL. The
// resolution-time average depends on updated_at being stamped on every status
// change, which the tickets trigger guarantees.
type StatsRepository interface {
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	AverageResolutionHours(ctx context.Context) (float64, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var entry StatusCount
		if err := rows.Scan(&entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *statsRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0), 0)
        FROM tickets
        WHERE status = 'Resolved' AND updated_at IS NOT NULL`
	var hours float64
	if err := r.pool.QueryRow(ctx, query).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}
