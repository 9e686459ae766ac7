package repository

import (
	"context"

	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteScoreRepository struct {
	db *sqlx.DB
}

func (r *sqliteScoreRepository) Insert(ctx context.Context, score *model.HighScore) error {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO high_scores (player_name, score, level_name, achieved_at, completion_time)
		VALUES (:player_name, :score, :level_name, :achieved_at, :completion_time)`,
		score)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	score.ID = id
	return nil
}

func (r *sqliteScoreRepository) BulkInsert(ctx context.Context, scores []model.HighScore) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// 100 rows * 5 params stays well below SQLite's default variable limit
	err = chunks(scores, 100, func(batch []model.HighScore) error {
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

func (r *sqliteScoreRepository) TopScores(ctx context.Context, limit int) ([]model.HighScore, error) {
	q := `SELECT ` + scoreColumns + `
		FROM high_scores
		ORDER BY score DESC, id ASC
		LIMIT ?`
	scores := []model.HighScore{}
	if err := r.db.SelectContext(ctx, &scores, q, limit); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *sqliteScoreRepository) ScoresForLevel(ctx context.Context, levelName string, limit int) ([]model.HighScore, error) {
	q := `SELECT ` + scoreColumns + `
		FROM high_scores
		WHERE level_name = ?
		ORDER BY score DESC, id ASC
		LIMIT ?`
	scores := []model.HighScore{}
	if err := r.db.SelectContext(ctx, &scores, q, levelName, limit); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *sqliteScoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM high_scores"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sqliteScoreRepository) CountByLevel(ctx context.Context) ([]model.LevelCount, error) {
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

func (r *sqliteScoreRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM high_scores")
	return err
}

func (r *sqliteScoreRepository) DatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	err := r.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	if err != nil {
		return 0, err
	}
	return size, nil
}
