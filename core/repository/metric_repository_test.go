package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricRepo(t *testing.T) *MetricRepository {
	t.Helper()

	db, err := NewDB("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewMetricRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	return repo
}

func TestPublish_InsertsNewMetric(t *testing.T) {
	repo := newMetricRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Publish(ctx, "users_total", "42"))

	m, err := repo.GetMetric(ctx, "users_total")
	require.NoError(t, err)
	assert.Equal(t, "users_total", m.Name)
	assert.Equal(t, "42", m.Value)
	assert.False(t, m.UpdatedAt.IsZero())
}

func TestPublish_UpsertKeepsOneRowPerName(t *testing.T) {
	repo := newMetricRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Publish(ctx, "uploads_total", "10"))
	first, err := repo.GetMetric(ctx, "uploads_total")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, repo.Publish(ctx, "uploads_total", "11"))

	second, err := repo.GetMetric(ctx, "uploads_total")
	require.NoError(t, err)
	assert.Equal(t, "11", second.Value)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "timestamp must move forward on overwrite")

	all, err := repo.ListMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPublish_LargeValueSurvivesRoundTrip(t *testing.T) {
	repo := newMetricRepo(t)
	ctx := context.Background()

	// Larger than any int64.
	big := "123456789012345678901234567890"
	require.NoError(t, repo.Publish(ctx, "content_bytes_total", big))

	m, err := repo.GetMetric(ctx, "content_bytes_total")
	require.NoError(t, err)
	assert.Equal(t, big, m.Value)
}

func TestGetMetric_UnknownName(t *testing.T) {
	repo := newMetricRepo(t)

	_, err := repo.GetMetric(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListMetrics_OrderedByName(t *testing.T) {
	repo := newMetricRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Publish(ctx, "users_total", "1"))
	require.NoError(t, repo.Publish(ctx, "pins_total", "2"))
	require.NoError(t, repo.Publish(ctx, "uploads_total", "3"))

	all, err := repo.ListMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "pins_total", all[0].Name)
	assert.Equal(t, "uploads_total", all[1].Name)
	assert.Equal(t, "users_total", all[2].Name)
}
