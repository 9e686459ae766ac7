// Package weather fetches current conditions for a city from an
// OpenWeatherMap-compatible endpoint.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	DefaultUnits   = "metric"
	DefaultTimeout = 10 * time.Second

	maxBodySize  = 1 << 20
	maxErrorBody = 256
)

// Credentials supplies the API key. It is consulted on every call.
type Credentials interface {
	IsConfigured() bool
	APIKey() string
}

// Options tune a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL string
	Units   string
	Timeout time.Duration
	// HTTPClient replaces the client built from Timeout
	HTTPClient *http.Client
	Breaker    config.BreakerConfig
	Logger     *zap.Logger
}

// Client performs single-shot weather lookups. It is safe for concurrent use.
type Client struct {
	creds   Credentials
	baseURL string
	units   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a weather client
func NewClient(creds Credentials, opts Options) *Client {
	c := &Client{
		creds:   creds,
		baseURL: opts.BaseURL,
		units:   opts.Units,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.units == "" {
		c.units = DefaultUnits
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if opts.Breaker.MaxFailures > 0 {
		c.breaker = newBreaker(opts.Breaker, c.logger)
	}
	return c
}

// NewClientFromConfig creates a client whose credential source is cfg itself
func NewClientFromConfig(cfg config.WeatherConfig, logger *zap.Logger) *Client {
	return NewClient(cfg, Options{
		BaseURL: cfg.BaseURL,
		Units:   cfg.Units,
		Timeout: cfg.Timeout,
		Breaker: cfg.Breaker,
		Logger:  logger,
	})
}

func newBreaker(cfg config.BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	maxFailures := uint32(cfg.MaxFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Weather circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Fetch returns the current weather for city. Blank input and a missing
// credential fail before any network I/O. A payload that decodes but lacks
// sections is returned without error; check WeatherRecord.IsValid.
func (c *Client) Fetch(ctx context.Context, city string) (model.WeatherRecord, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return model.WeatherRecord{}, ErrInvalidInput
	}
	if c.creds == nil || !c.creds.IsConfigured() {
		return model.WeatherRecord{}, ErrMissingCredential
	}
	if err := ctx.Err(); err != nil {
		return model.WeatherRecord{}, cancelled(err)
	}

	c.logger.Debug("Fetching weather", zap.String("city", city))

	body, err := c.do(ctx, c.requestURL(city, c.creds.APIKey()))
	if err != nil {
		c.logger.Warn("Weather request failed", zap.String("city", city), zap.Error(err))
		return model.WeatherRecord{}, err
	}

	rec, err := model.DecodeWeatherRecord(body)
	if err != nil {
		c.logger.Warn("Weather response could not be decoded", zap.String("city", city), zap.Error(err))
		return model.WeatherRecord{}, &DecodeError{Message: err.Error()}
	}
	if !rec.IsValid() {
		c.logger.Warn("Weather response is incomplete", zap.String("city", city))
	}

	return rec, nil
}

func (c *Client) requestURL(city, apiKey string) string {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", apiKey)
	values.Set("units", c.units)
	return c.baseURL + "?" + values.Encode()
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	if c.breaker == nil {
		return c.get(ctx, u)
	}

	// Failures that say nothing about upstream health are reported to the
	// breaker as successes and handed back separately.
	var passthrough error
	out, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := c.get(ctx, u)
		if err != nil && !tripsBreaker(err) {
			passthrough = err
			return nil, nil
		}
		return body, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Message: "circuit breaker open"}
	}
	if err != nil {
		return nil, err
	}
	if passthrough != nil {
		return nil, passthrough
	}
	return out.([]byte), nil
}

// tripsBreaker is false for an unknown city or a caller giving up
func tripsBreaker(err error) bool {
	if errors.Is(err, ErrCancelled) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500 && te.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return true
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Message: "build request: " + stripURL(err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		return nil, &TransportError{Message: stripURL(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := http.StatusText(resp.StatusCode)
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		return nil, &TransportError{Message: "read body: " + stripURL(err)}
	}
	return body, nil
}

// stripURL drops the request URL from net/http errors; it carries the API key
func stripURL(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Op + ": " + ue.Err.Error()
	}
	return err.Error()
}
