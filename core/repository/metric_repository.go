package repository

import (
	"context"
	"fmt"
	"time"

	"metrics-collector/core/models"
)

// MetricRepository handles database operations for stored metrics
type MetricRepository struct {
	db *DB
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(db *DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// EnsureSchema creates the metric table if it does not exist
func (r *MetricRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metric (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure metric schema: %w", err)
	}
	return nil
}

// Publish upserts the current value for a metric name and refreshes
// its update timestamp. The single statement keeps the write atomic
// per name; concurrent publishes for different names are independent.
func (r *MetricRepository) Publish(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO metric (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = $2, updated_at = $3
	`

	if _, err := r.db.ExecContext(ctx, query, name, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("publish metric %s: %w", name, err)
	}
	return nil
}

// GetMetric retrieves a metric by name
func (r *MetricRepository) GetMetric(ctx context.Context, name string) (*models.Metric, error) {
	query := `SELECT name, value, updated_at FROM metric WHERE name = $1`

	var m models.Metric
	err := r.db.QueryRowContext(ctx, query, name).Scan(&m.Name, &m.Value, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// ListMetrics lists all stored metrics ordered by name
func (r *MetricRepository) ListMetrics(ctx context.Context) ([]models.Metric, error) {
	query := `SELECT name, value, updated_at FROM metric ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.Metric
	for rows.Next() {
		var m models.Metric
		if err := rows.Scan(&m.Name, &m.Value, &m.UpdatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}
