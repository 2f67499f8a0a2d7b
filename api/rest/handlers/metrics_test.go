package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"metrics-collector/core/repository"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	db, err := repository.NewDB("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewMetricRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.Publish(ctx, "users_total", "42"))
	require.NoError(t, repo.Publish(ctx, "uploads_total", "7"))

	h := NewMetricsHandler(repo)
	r := mux.NewRouter()
	r.HandleFunc("/v1/metrics", h.ListMetrics).Methods("GET")
	r.HandleFunc("/v1/metrics/{name}", h.GetMetric).Methods("GET")

	return r
}

func TestListMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []metricResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "uploads_total", resp[0].Name)
	assert.Equal(t, "users_total", resp[1].Name)
}

func TestGetMetric(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics/users_total", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp metricResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "users_total", resp.Name)
	assert.Equal(t, "42", resp.Value)
	assert.False(t, resp.UpdatedAt.IsZero())
}

func TestGetMetric_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
