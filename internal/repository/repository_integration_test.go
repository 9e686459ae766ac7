//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/database"
	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a test database connection
// This requires a running PostgreSQL instance
func setupTestDB(t *testing.T) *sqlx.DB {
	cfg := config.DBConfig{
		Type:     config.DBTypePostgreSQL,
		Host:     getenv("TEST_DB_HOST", "localhost"),
		Port:     getenv("TEST_DB_PORT", "5432"),
		User:     getenv("TEST_DB_USER", "weatherscore"),
		Password: getenv("TEST_DB_PASSWORD", "weatherscore_password"),
		Name:     getenv("TEST_DB_NAME", "weatherscore_test"),
		SSLMode:  "disable",
	}

	// Fail fast with a clear message if the server is not reachable
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
	pool.Close()

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, cfg))
	require.NoError(t, database.Migrate(db, cfg))
	// Migrations must not hold on to a pooled connection
	assert.Zero(t, db.Stats().InUse)

	_, err = db.Exec("TRUNCATE high_scores RESTART IDENTITY")
	require.NoError(t, err)

	return db
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestPgScoreRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	repo := NewScoreRepository(db, config.DBTypePostgreSQL)
	ctx := context.Background()

	t.Run("Insert and TopScores", func(t *testing.T) {
		for _, s := range []model.HighScore{
			model.NewHighScore("a", 500, "Level1", 0),
			model.NewHighScore("b", 1500, "Level2", 0),
			model.NewHighScore("c", 1000, "Level1", 3.25),
		} {
			s := s
			require.NoError(t, repo.Insert(ctx, &s))
			assert.Positive(t, s.ID)
		}

		top, err := repo.TopScores(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, []int{1500, 1000, 500}, []int{top[0].Score, top[1].Score, top[2].Score})
	})

	t.Run("ScoresForLevel", func(t *testing.T) {
		scores, err := repo.ScoresForLevel(ctx, "Level1", 10)
		require.NoError(t, err)
		assert.Len(t, scores, 2)
	})

	t.Run("BulkInsert and DeleteAll", func(t *testing.T) {
		n, err := repo.BulkInsert(ctx, []model.HighScore{
			model.NewHighScore("x", 1, "", 0),
			model.NewHighScore("y", 2, "", 0),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, repo.DeleteAll(ctx))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
