package service

import (
	"context"

	"github.com/alexivanou/weatherscore/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	GetWeather(ctx context.Context, city string) (model.WeatherRecord, error)
	AddHighScore(ctx context.Context, playerName string, score int, levelName string, completionTime float64) (model.HighScore, error)
	TopHighScores(ctx context.Context, limit int) ([]model.HighScore, error)
	HighScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error)
	HighScoreCount(ctx context.Context) (int64, error)
	ClearHighScores(ctx context.Context) error
}

// WeatherFetcher is satisfied by *weather.Client
type WeatherFetcher interface {
	Fetch(ctx context.Context, city string) (model.WeatherRecord, error)
}

// ScoreStore is satisfied by *scores.Store
type ScoreStore interface {
	Insert(ctx context.Context, playerName string, score int, levelName string, completionTime float64) (model.HighScore, error)
	TopScores(ctx context.Context, limit int) ([]model.HighScore, error)
	ScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error)
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) error
	Close() error
}
