// Package scores persists high-score records in a single embedded database.
package scores

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/database"
	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/alexivanou/weatherscore/internal/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DefaultLimit is used by the query methods when limit is not positive
const DefaultLimit = 10

// Store owns one database handle for its whole lifetime. It is safe for
// concurrent use; once closed, every operation returns ErrClosed.
type Store struct {
	mu     sync.RWMutex
	db     *sqlx.DB
	repo   repository.ScoreRepository
	logger *zap.Logger
	closed bool
}

// Open opens (creating if needed) the SQLite file at path and ensures the
// schema exists. Opening an existing file leaves its records untouched.
func Open(ctx context.Context, path string) (*Store, error) {
	return OpenWithConfig(ctx, config.DBConfig{Type: config.DBTypeSQLite, Path: path}, nil)
}

// OpenWithConfig opens a store on any supported backend
func OpenWithConfig(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, wrap(ErrInit, "connect", err)
	}

	if err := database.Migrate(db, cfg); err != nil {
		db.Close()
		return nil, wrap(ErrInit, "migrate", err)
	}

	logger.Info("Score store opened",
		zap.String("type", string(cfg.Type)),
		zap.String("path", cfg.Path),
	)

	return &Store{
		db:     db,
		repo:   repository.NewScoreRepository(db, cfg.Type),
		logger: logger,
	}, nil
}

// Insert records a new score stamped with the current UTC time and returns
// it with the assigned ID. An empty levelName is stored as "Default".
func (s *Store) Insert(ctx context.Context, playerName string, score int, levelName string, completionTime float64) (model.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.HighScore{}, ErrClosed
	}
	if !finite(completionTime) {
		return model.HighScore{}, wrap(ErrWrite, "insert", errNonFinite)
	}

	hs := model.NewHighScore(playerName, score, levelName, completionTime)
	if err := s.repo.Insert(ctx, &hs); err != nil {
		return model.HighScore{}, wrap(ErrWrite, "insert", err)
	}

	s.logger.Debug("High score added",
		zap.Int64("id", hs.ID),
		zap.String("player", hs.PlayerName),
		zap.Int("score", hs.Score),
		zap.String("level", hs.LevelName),
	)
	return hs, nil
}

// InsertBatch stores already-built records in a single transaction: either
// all of them are written or none are.
func (s *Store) InsertBatch(ctx context.Context, batch []model.HighScore) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := make([]model.HighScore, len(batch))
	copy(rows, batch)
	for i := range rows {
		if !finite(rows[i].CompletionTime) {
			return 0, wrap(ErrWrite, "insert batch", fmt.Errorf("row %d: %w", i, errNonFinite))
		}
		if rows[i].LevelName == "" {
			rows[i].LevelName = model.DefaultLevel
		}
		if rows[i].AchievedAt.IsZero() {
			rows[i].AchievedAt = now
		}
	}

	n, err := s.repo.BulkInsert(ctx, rows)
	if err != nil {
		return 0, wrap(ErrWrite, "insert batch", err)
	}
	return n, nil
}

// TopScores returns at most limit records, highest score first. Equal
// scores keep insertion order.
func (s *Store) TopScores(ctx context.Context, limit int) ([]model.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	scores, err := s.repo.TopScores(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, wrap(ErrRead, "top scores", err)
	}
	return scores, nil
}

// ScoresForLevel is TopScores filtered to an exact, case-sensitive level name
func (s *Store) ScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	scores, err := s.repo.ScoresForLevel(ctx, levelName, normalizeLimit(limit))
	if err != nil {
		return nil, wrap(ErrRead, "scores for level", err)
	}
	return scores, nil
}

// Count returns the total number of stored records
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, wrap(ErrRead, "count", err)
	}
	return count, nil
}

// LevelCounts returns the number of records per level, ordered by level name
func (s *Store) LevelCounts(ctx context.Context) ([]model.LevelCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	counts, err := s.repo.CountByLevel(ctx)
	if err != nil {
		return nil, wrap(ErrRead, "level counts", err)
	}
	return counts, nil
}

// SizeBytes returns the storage used by the database
func (s *Store) SizeBytes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	size, err := s.repo.DatabaseSize(ctx)
	if err != nil {
		return 0, wrap(ErrRead, "size", err)
	}
	return size, nil
}

// ClearAll deletes every record. The schema is kept.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return wrap(ErrWrite, "clear", err)
	}
	s.logger.Info("All high scores cleared")
	return nil
}

// Close releases the database handle. Calling it again is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// finite is false for NaN and ±Inf, which the driver cannot store faithfully
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
