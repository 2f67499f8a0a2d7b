package routes

import (
	"metrics-collector/api/rest/handlers"
	"metrics-collector/core/repository"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, db *repository.DB) {
	metricRepo := repository.NewMetricRepository(db)
	metricsHandler := handlers.NewMetricsHandler(metricRepo)

	api := r.PathPrefix("/v1").Subrouter()

	// Metric endpoints
	api.HandleFunc("/metrics", metricsHandler.ListMetrics).Methods("GET")
	api.HandleFunc("/metrics/{name}", metricsHandler.GetMetric).Methods("GET")
}
