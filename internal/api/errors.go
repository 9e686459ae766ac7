package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/alexivanou/weatherscore/internal/scores"
	"github.com/alexivanou/weatherscore/internal/service"
	"github.com/alexivanou/weatherscore/internal/weather"
)

var storeErrors = []error{
	scores.ErrClosed,
	scores.ErrInit,
	scores.ErrRead,
	scores.ErrWrite,
}

// statusFor maps error kinds to HTTP status codes
func statusFor(err error) int {
	var te *weather.TransportError

	switch {
	case errors.Is(err, weather.ErrInvalidInput), errors.Is(err, service.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, weather.ErrMissingCredential), errors.Is(err, scores.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, weather.ErrCancelled):
		return http.StatusGatewayTimeout
	case errors.As(err, &te) && te.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, weather.ErrTransport), errors.Is(err, weather.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(model.ErrorResponse{Error: "internal server error"})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
