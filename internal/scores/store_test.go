package scores

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexivanou/weatherscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "GameData.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func scoresOf(records []model.HighScore) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Score)
	}
	return out
}

func TestStore_InsertRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, "Alice", 1200, "Level1", 93.75)
	require.NoError(t, err)
	assert.Positive(t, inserted.ID)
	assert.Equal(t, "Level1", inserted.LevelName)

	top, err := s.TopScores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)

	got := top[0]
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, "Alice", got.PlayerName)
	assert.Equal(t, 1200, got.Score)
	assert.Equal(t, "Level1", got.LevelName)
	assert.Equal(t, 93.75, got.CompletionTime)
	assert.True(t, inserted.AchievedAt.Equal(got.AchievedAt), "achieved_at %v != %v", inserted.AchievedAt, got.AchievedAt)
}

func TestStore_InsertDefaults(t *testing.T) {
	s, _ := openTestStore(t)

	hs, err := s.Insert(context.Background(), "Bob", 10, "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hs.ID)
	assert.Equal(t, model.DefaultLevel, hs.LevelName)
	assert.Zero(t, hs.CompletionTime)
	assert.False(t, hs.AchievedAt.IsZero())
}

func TestStore_TopScores(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, score := range []int{500, 1500, 1000} {
		_, err := s.Insert(ctx, "player", score, "", 0)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		limit    int
		expected []int
	}{
		{name: "limit above count", limit: 10, expected: []int{1500, 1000, 500}},
		{name: "limit below count", limit: 2, expected: []int{1500, 1000}},
		{name: "zero limit uses default", limit: 0, expected: []int{1500, 1000, 500}},
		{name: "negative limit uses default", limit: -5, expected: []int{1500, 1000, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := s.TopScores(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scoresOf(top))
		})
	}
}

func TestStore_TopScoresTiesKeepInsertionOrder(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Insert(ctx, name, 700, "", 0)
		require.NoError(t, err)
	}

	top, err := s.TopScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "first", top[0].PlayerName)
	assert.Equal(t, "second", top[1].PlayerName)
	assert.Equal(t, "third", top[2].PlayerName)
	assert.Less(t, top[0].ID, top[1].ID)
}

func TestStore_TopScoresDefaultLimit(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < DefaultLimit+2; i++ {
		_, err := s.Insert(ctx, fmt.Sprintf("p%d", i), i, "", 0)
		require.NoError(t, err)
	}

	top, err := s.TopScores(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultLimit)
}

func TestStore_EmptyStore(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	top, err := s.TopScores(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ScoresForLevel(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	inserts := []struct {
		player string
		score  int
		level  string
	}{
		{"a", 300, "Level1"},
		{"b", 900, "Level2"},
		{"c", 600, "Level1"},
		{"d", 800, "level1"},
		{"e", 100, ""},
	}
	for _, in := range inserts {
		_, err := s.Insert(ctx, in.player, in.score, in.level, 0)
		require.NoError(t, err)
	}

	level1, err := s.ScoresForLevel(ctx, "Level1", 10)
	require.NoError(t, err)
	assert.Equal(t, []int{600, 300}, scoresOf(level1))
	for _, r := range level1 {
		assert.Equal(t, "Level1", r.LevelName)
	}

	defaults, err := s.ScoresForLevel(ctx, model.DefaultLevel, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, scoresOf(defaults))

	limited, err := s.ScoresForLevel(ctx, "Level1", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{600}, scoresOf(limited))
}

func TestStore_ClearAll(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, "p", i, "", 0)
		require.NoError(t, err)
	}

	require.NoError(t, s.ClearAll(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Schema survives the clear
	_, err = s.Insert(ctx, "after", 1, "", 0)
	require.NoError(t, err)
}

func TestStore_LevelCountsAndSize(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, level := range []string{"B", "A", "B"} {
		_, err := s.Insert(ctx, "p", 1, level, 0)
		require.NoError(t, err)
	}

	counts, err := s.LevelCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.LevelCount{{LevelName: "A", Count: 1}, {LevelName: "B", Count: 2}}, counts)

	size, err := s.SizeBytes(ctx)
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores", "GameData.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = first.Insert(ctx, "Alice", 42, "Level1", 1.5)
	require.NoError(t, err)

	// A second open on the live file must neither fail nor touch the data
	second, err := Open(ctx, path)
	require.NoError(t, err)
	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.NoError(t, second.Close())
	require.NoError(t, first.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	top, err := reopened.TopScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Alice", top[0].PlayerName)
	assert.Equal(t, int64(1), top[0].ID)
}

func TestStore_OpenPathWithURISyntax(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"team#1.db", "what?mode=ro.db", "100%.db", "team#2.db"} {
		s, err := Open(ctx, filepath.Join(dir, name))
		require.NoError(t, err, name)
		_, err = s.Insert(ctx, name, 1, "", 0)
		require.NoError(t, err, name)
		require.NoError(t, s.Close())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"team#1.db", "what?mode=ro.db", "100%.db", "team#2.db"}, names)

	// Each path owns its own records
	s, err := Open(ctx, filepath.Join(dir, "team#1.db"))
	require.NoError(t, err)
	defer s.Close()
	top, err := s.TopScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "team#1.db", top[0].PlayerName)
}

func TestStore_RejectsNonFiniteCompletionTime(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.Insert(ctx, "p", 1, "", v)
		assert.ErrorIs(t, err, ErrWrite)

		batch := []model.HighScore{model.NewHighScore("ok", 2, "", 1), model.NewHighScore("bad", 3, "", v)}
		_, err = s.InsertBatch(ctx, batch)
		assert.ErrorIs(t, err, ErrWrite)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_OpenFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Open(context.Background(), filepath.Join(blocker, "GameData.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInit)
}

func TestStore_Closed(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Insert(ctx, "p", 1, "", 0)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.InsertBatch(ctx, []model.HighScore{model.NewHighScore("p", 1, "", 0)})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.TopScores(ctx, 10)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.ScoresForLevel(ctx, "Level1", 10)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.LevelCounts(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.SizeBytes(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, s.ClearAll(ctx), ErrClosed)
}

func TestStore_FailuresAreWrapped(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec("DROP TABLE high_scores")
	require.NoError(t, err)

	_, err = s.TopScores(ctx, 10)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorContains(t, err, "no such table")

	_, err = s.ScoresForLevel(ctx, "Level1", 10)
	assert.ErrorIs(t, err, ErrRead)

	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrRead)

	_, err = s.Insert(ctx, "p", 1, "", 0)
	assert.ErrorIs(t, err, ErrWrite)

	assert.ErrorIs(t, s.ClearAll(ctx), ErrWrite)
}

func TestStore_InsertBatch(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	batch := []model.HighScore{
		{PlayerName: "a", Score: 10},
		model.NewHighScore("b", 20, "Level1", 4),
	}
	n, err := s.InsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Caller's slice is left alone
	assert.Empty(t, batch[0].LevelName)

	top, err := s.TopScores(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].PlayerName)
	assert.Equal(t, model.DefaultLevel, top[1].LevelName)
	assert.False(t, top[1].AchievedAt.IsZero())
}

func TestStore_InsertBatchIsAtomic(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`CREATE TRIGGER reject_cheater BEFORE INSERT ON high_scores
		WHEN NEW.player_name = 'cheater'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	var batch []model.HighScore
	for i := 0; i < 150; i++ {
		batch = append(batch, model.NewHighScore(fmt.Sprintf("p%d", i), i, "", 0))
	}
	// Lands in the second chunk, after the first one was already written
	batch[120].PlayerName = "cheater"

	_, err = s.InsertBatch(ctx, batch)
	assert.ErrorIs(t, err, ErrWrite)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 8, 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := s.Insert(ctx, fmt.Sprintf("w%d", w), w*10+i, "", 0); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("insert failed: %v", err)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), count)
}
