package model

import (
	"fmt"
	"time"
)

// DefaultLevel is used when a score is recorded without a level name
const DefaultLevel = "Default"

// HighScore represents a high-score row in the database
type HighScore struct {
	ID             int64     `db:"id" json:"id"`
	PlayerName     string    `db:"player_name" json:"player_name"`
	Score          int       `db:"score" json:"score"`
	LevelName      string    `db:"level_name" json:"level_name"`
	AchievedAt     time.Time `db:"achieved_at" json:"achieved_at"`
	CompletionTime float64   `db:"completion_time" json:"completion_time"`
}

// NewHighScore builds an unsaved record stamped with the current UTC time.
// The timestamp is truncated to microseconds, the finest precision every
// supported backend stores.
func NewHighScore(playerName string, score int, levelName string, completionTime float64) HighScore {
	if levelName == "" {
		levelName = DefaultLevel
	}
	return HighScore{
		PlayerName:     playerName,
		Score:          score,
		LevelName:      levelName,
		AchievedAt:     time.Now().UTC().Truncate(time.Microsecond),
		CompletionTime: completionTime,
	}
}

func (h HighScore) String() string {
	return fmt.Sprintf("%s: %d points on %s (%.2fs)", h.PlayerName, h.Score, h.LevelName, h.CompletionTime)
}

// LevelCount is the number of stored scores for one level
type LevelCount struct {
	LevelName string `db:"level_name" json:"level_name"`
	Count     int64  `db:"count" json:"count"`
}
