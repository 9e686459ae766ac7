package api

import (
	"net/http"

	"github.com/alexivanou/weatherscore/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler handles statistics requests
type StatsHandler struct {
	collector *stats.Collector
	logger    *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(collector *stats.Collector, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{collector: collector, logger: logger}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics",
			zap.Error(err),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			writeError(w, status, "failed to collect statistics")
			return
		}
		writeError(w, status, publicMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
