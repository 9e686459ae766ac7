package repository

import (
	"context"

	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgScoreRepository struct {
	db *sqlx.DB
}

func (r *pgScoreRepository) Insert(ctx context.Context, score *model.HighScore) error {
	q := `INSERT INTO high_scores (player_name, score, level_name, achieved_at, completion_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.db.GetContext(ctx, &score.ID, q,
		score.PlayerName, score.Score, score.LevelName, score.AchievedAt, score.CompletionTime)
}

func (r *pgScoreRepository) BulkInsert(ctx context.Context, scores []model.HighScore) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Chunking to stay under the 65535 parameter limit
	err = chunks(scores, 2000, func(batch []model.HighScore) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO high_scores (player_name, score, level_name, achieved_at, completion_time)
			VALUES (:player_name, :score, :level_name, :achieved_at, :completion_time)`,
			batch)
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(scores), nil
}

func (r *pgScoreRepository) TopScores(ctx context.Context, limit int) ([]model.HighScore, error) {
	q := `SELECT ` + scoreColumns + `
		FROM high_scores
		ORDER BY score DESC, id ASC
		LIMIT $1`
	scores := []model.HighScore{}
	if err := r.db.SelectContext(ctx, &scores, q, limit); err != nil {
		return nil, err
	}
	return inUTC(scores), nil
}

func (r *pgScoreRepository) ScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error) {
	q := `SELECT ` + scoreColumns + `
		FROM high_scores
		WHERE level_name = $1
		ORDER BY score DESC, id ASC
		LIMIT $2`
	scores := []model.HighScore{}
	if err := r.db.SelectContext(ctx, &scores, q, levelName, limit); err != nil {
		return nil, err
	}
	return inUTC(scores), nil
}

func (r *pgScoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM high_scores"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pgScoreRepository) CountByLevel(ctx context.Context) ([]model.LevelCount, error) {
	q := `SELECT level_name, COUNT(*) AS count
		FROM high_scores
		GROUP BY level_name
		ORDER BY level_name`
	counts := []model.LevelCount{}
	if err := r.db.SelectContext(ctx, &counts, q); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *pgScoreRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM high_scores")
	return err
}

func (r *pgScoreRepository) DatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	err := r.db.GetContext(ctx, &size, "SELECT COALESCE(pg_total_relation_size('high_scores'::regclass), 0)")
	if err != nil {
		return 0, err
	}
	return size, nil
}

// pgx hands back timestamptz values in the local zone
func inUTC(scores []model.HighScore) []model.HighScore {
	for i := range scores {
		scores[i].AchievedAt = scores[i].AchievedAt.UTC()
	}
	return scores
}
