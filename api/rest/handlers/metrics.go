package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"metrics-collector/core/repository"

	"github.com/gorilla/mux"
)

// MetricsHandler handles read-only metric API requests
type MetricsHandler struct {
	metricRepo *repository.MetricRepository
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metricRepo *repository.MetricRepository) *MetricsHandler {
	return &MetricsHandler{metricRepo: metricRepo}
}

type metricResponse struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListMetrics returns all stored metric current values
func (h *MetricsHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.metricRepo.ListMetrics(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch metrics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]metricResponse, 0, len(metrics))
	for _, m := range metrics {
		resp = append(resp, metricResponse{Name: m.Name, Value: m.Value, UpdatedAt: m.UpdatedAt})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetMetric returns a single metric by name
func (h *MetricsHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m, err := h.metricRepo.GetMetric(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Metric not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch metric: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metricResponse{Name: m.Name, Value: m.Value, UpdatedAt: m.UpdatedAt})
}
