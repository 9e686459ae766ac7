package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alexivanou/weatherscore/internal/model"
	"go.uber.org/zap"
)

// ErrInvalidScore is returned when a score submission is rejected before it reaches the store
var ErrInvalidScore = errors.New("invalid high score")

// Service combines the weather client and the score store behind one handle.
// The host creates it at startup and closes it at shutdown.
type Service struct {
	weather WeatherFetcher
	scores  ScoreStore
	logger  *zap.Logger
}

// New creates a new service instance
func New(weather WeatherFetcher, scores ScoreStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		weather: weather,
		scores:  scores,
		logger:  logger,
	}
}

// GetWeather returns the current weather for a city
func (s *Service) GetWeather(ctx context.Context, city string) (model.WeatherRecord, error) {
	return s.weather.Fetch(ctx, city)
}

// AddHighScore validates and stores a new score
func (s *Service) AddHighScore(ctx context.Context, playerName string, score int, levelName string, completionTime float64) (model.HighScore, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return model.HighScore{}, fmt.Errorf("%w: player name is required", ErrInvalidScore)
	}
	if completionTime < 0 {
		return model.HighScore{}, fmt.Errorf("%w: completion time must not be negative", ErrInvalidScore)
	}
	if math.IsNaN(completionTime) || math.IsInf(completionTime, 0) {
		return model.HighScore{}, fmt.Errorf("%w: completion time must be a finite number", ErrInvalidScore)
	}

	hs, err := s.scores.Insert(ctx, playerName, score, strings.TrimSpace(levelName), completionTime)
	if err != nil {
		s.logger.Error("Failed to add high score", zap.String("player", playerName), zap.Error(err))
		return model.HighScore{}, err
	}

	s.logger.Info("High score added",
		zap.Int64("id", hs.ID),
		zap.String("player", hs.PlayerName),
		zap.Int("score", hs.Score),
		zap.String("level", hs.LevelName),
	)
	return hs, nil
}

// TopHighScores returns the best scores across all levels
func (s *Service) TopHighScores(ctx context.Context, limit int) ([]model.HighScore, error) {
	return s.scores.TopScores(ctx, limit)
}

// HighScoresForLevel returns the best scores of one level
func (s *Service) HighScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error) {
	return s.scores.ScoresForLevel(ctx, levelName, limit)
}

// HighScoreCount returns the number of stored scores
func (s *Service) HighScoreCount(ctx context.Context) (int64, error) {
	return s.scores.Count(ctx)
}

// ClearHighScores deletes every stored score
func (s *Service) ClearHighScores(ctx context.Context) error {
	if err := s.scores.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("All high scores cleared")
	return nil
}

// Close releases the score store
func (s *Service) Close() error {
	return s.scores.Close()
}
