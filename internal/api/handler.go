package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/alexivanou/weatherscore/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxLimit = 100

var validate = validator.New()

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	rec, err := h.service.GetWeather(r.Context(), city)
	if err != nil {
		h.fail(w, r, "Error fetching weather", err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewWeatherResponse(rec))
}

// ListScores handles GET /api/v1/scores
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	var (
		results []model.HighScore
		err     error
	)
	if level := r.URL.Query().Get("level"); level != "" {
		results, err = h.service.HighScoresForLevel(r.Context(), level, limit)
	} else {
		results, err = h.service.TopHighScores(r.Context(), limit)
	}
	if err != nil {
		h.fail(w, r, "Error listing high scores", err)
		return
	}

	writeJSON(w, http.StatusOK, model.ScoresResponse{
		Results: results,
		Count:   len(results),
	})
}

// AddScore handles POST /api/v1/scores
func (h *Handler) AddScore(w http.ResponseWriter, r *http.Request) {
	var req model.AddScoreRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hs, err := h.service.AddHighScore(r.Context(), req.PlayerName, req.Score, req.LevelName, req.CompletionTime)
	if err != nil {
		h.fail(w, r, "Error adding high score", err)
		return
	}

	writeJSON(w, http.StatusCreated, hs)
}

// CountScores handles GET /api/v1/scores/count
func (h *Handler) CountScores(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.HighScoreCount(r.Context())
	if err != nil {
		h.fail(w, r, "Error counting high scores", err)
		return
	}

	writeJSON(w, http.StatusOK, model.CountResponse{Count: count})
}

// ClearScores handles DELETE /api/v1/scores
func (h *Handler) ClearScores(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearHighScores(r.Context()); err != nil {
		h.fail(w, r, "Error clearing high scores", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)

	fields := []zap.Field{zap.Error(err), zap.String("request_id", RequestIDFromContext(r.Context()))}
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Debug(msg, fields...)
	}

	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, publicMessage(err))
}

// publicMessage keeps driver details of store failures out of responses;
// they are in the log
func publicMessage(err error) string {
	for _, kind := range storeErrors {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
