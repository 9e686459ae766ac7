package repository

import (
	"context"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/jmoiron/sqlx"
)

// ScoreRepository defines operations for high scores
type ScoreRepository interface {
	// Insert stores a single score and sets its ID
	Insert(ctx context.Context, score *model.HighScore) error
	// BulkInsert stores all scores in one transaction and returns how many were written
	BulkInsert(ctx context.Context, scores []model.HighScore) (int, error)
	// TopScores returns scores ordered by score descending, then by insertion order
	TopScores(ctx context.Context, limit int) ([]model.HighScore, error)
	// ScoresForLevel is TopScores restricted to an exact level name
	ScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error)
	Count(ctx context.Context) (int64, error)
	CountByLevel(ctx context.Context) ([]model.LevelCount, error)
	DeleteAll(ctx context.Context) error
	// DatabaseSize returns the on-disk size of the score data in bytes
	DatabaseSize(ctx context.Context) (int64, error)
}

// NewScoreRepository creates the repository implementation for the DB type
func NewScoreRepository(db *sqlx.DB, dbType config.DBType) ScoreRepository {
	if dbType == config.DBTypePostgreSQL {
		return &pgScoreRepository{db: db}
	}

	// Default to SQLite
	return &sqliteScoreRepository{db: db}
}

const scoreColumns = "id, player_name, score, level_name, achieved_at, completion_time"

func chunks(scores []model.HighScore, size int, fn func(batch []model.HighScore) error) error {
	for i := 0; i < len(scores); i += size {
		end := i + size
		if end > len(scores) {
			end = len(scores)
		}
		if err := fn(scores[i:end]); err != nil {
			return err
		}
	}
	return nil
}
