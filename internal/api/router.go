package api

import (
	"github.com/alexivanou/weatherscore/internal/service"
	"github.com/alexivanou/weatherscore/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	v1.HandleFunc("/scores", handler.ListScores).Methods("GET")
	v1.HandleFunc("/scores", handler.AddScore).Methods("POST")
	v1.HandleFunc("/scores", handler.ClearScores).Methods("DELETE")
	v1.HandleFunc("/scores/count", handler.CountScores).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
