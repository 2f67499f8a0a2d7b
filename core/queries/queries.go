package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Querier is the read-handle capability metric queries need. Both
// *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Sample is one named metric value produced by a query
type Sample struct {
	Name  string
	Value string
}

// MetricQuery computes one or more metric samples from the read source
type MetricQuery interface {
	Label() string
	Execute(ctx context.Context, q Querier) ([]Sample, error)
}

// ErrEmptyResult signals that an aggregate query expected to return
// exactly one row returned none. That is a data-integrity fault, not a
// zero-valued metric, so it surfaces as a task failure.
var ErrEmptyResult = errors.New("aggregate query returned no rows")

// MetricName derives the stored metric name from a base name and an
// optional category, e.g. ("uploads", "Nft") -> "uploads_nft_total".
func MetricName(base, category string) string {
	if category == "" {
		return base + "_total"
	}
	return base + "_" + slug(category) + "_total"
}

// slug lowercases a category and collapses runs of non-alphanumerics
// into single underscores
func slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// scanAggregate reads the single row an aggregate must produce,
// mapping a zero-row result to ErrEmptyResult
func scanAggregate(row *sql.Row, dest interface{}) error {
	err := row.Scan(dest)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEmptyResult
	}
	return err
}

// CountAll counts every row of a table
type CountAll struct {
	Base  string
	Table string
}

func (q CountAll) Label() string {
	return MetricName(q.Base, "")
}

func (q CountAll) Execute(ctx context.Context, db Querier) ([]Sample, error) {
	var n int64
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", q.Table))
	if err := scanAggregate(row, &n); err != nil {
		return nil, fmt.Errorf("count %s: %w", q.Table, err)
	}

	return []Sample{{Name: q.Label(), Value: strconv.FormatInt(n, 10)}}, nil
}

// CountFiltered counts the rows of a table matching one category value.
// The metric name is derived from the base name and the category.
type CountFiltered struct {
	Base     string
	Table    string
	Column   string
	Category string
}

func (q CountFiltered) Label() string {
	return MetricName(q.Base, q.Category)
}

func (q CountFiltered) Execute(ctx context.Context, db Querier) ([]Sample, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", q.Table, q.Column)
	row := db.QueryRowContext(ctx, query, q.Category)
	if err := scanAggregate(row, &n); err != nil {
		return nil, fmt.Errorf("count %s by %s=%s: %w", q.Table, q.Column, q.Category, err)
	}

	return []Sample{{Name: q.Label(), Value: strconv.FormatInt(n, 10)}}, nil
}

// SumScalar sums a numeric column across a table. The sum is scanned
// into a string so arbitrarily large totals survive the trip intact.
type SumScalar struct {
	Base   string
	Table  string
	Column string
}

func (q SumScalar) Label() string {
	return MetricName(q.Base, "")
}

func (q SumScalar) Execute(ctx context.Context, db Querier) ([]Sample, error) {
	var total string
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s", q.Column, q.Table)
	row := db.QueryRowContext(ctx, query)
	if err := scanAggregate(row, &total); err != nil {
		return nil, fmt.Errorf("sum %s.%s: %w", q.Table, q.Column, err)
	}

	return []Sample{{Name: q.Label(), Value: total}}, nil
}
