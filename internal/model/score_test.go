package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHighScore(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	hs := NewHighScore("Alice", 1500, "", 0)

	assert.Zero(t, hs.ID)
	assert.Equal(t, "Alice", hs.PlayerName)
	assert.Equal(t, 1500, hs.Score)
	assert.Equal(t, DefaultLevel, hs.LevelName)
	assert.Zero(t, hs.CompletionTime)
	assert.Equal(t, time.UTC, hs.AchievedAt.Location())
	assert.True(t, hs.AchievedAt.After(before))
	assert.Equal(t, hs.AchievedAt, hs.AchievedAt.Truncate(time.Microsecond))
}

func TestNewHighScore_KeepsLevel(t *testing.T) {
	hs := NewHighScore("Bob", 10, "Level1", 42.5)
	assert.Equal(t, "Level1", hs.LevelName)
	assert.Equal(t, 42.5, hs.CompletionTime)
}

func TestHighScore_String(t *testing.T) {
	hs := HighScore{PlayerName: "Alice", Score: 1500, LevelName: "Level1", CompletionTime: 63.5}
	assert.Equal(t, "Alice: 1500 points on Level1 (63.50s)", hs.String())
}
