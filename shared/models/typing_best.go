package models

import (
	"time"

	"github.com/google/uuid"
)

// TypingBest is the durable best score of a user on a level.
type TypingBest struct {
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Level     Level     `db:"level" json:"level"`
	Best      int       `db:"best" json:"best"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// BestScores holds one best per level.
type BestScores struct {
	Easy   int `json:"easy"`
	Normal int `json:"normal"`
	Hard   int `json:"hard"`
}

// Set stores best under level. Unknown levels are ignored.
func (b *BestScores) Set(level Level, best int) {
	switch level {
	case LevelEasy:
		b.Easy = best
	case LevelNormal:
		b.Normal = best
	case LevelHard:
		b.Hard = best
	}
}

// Get returns the best stored for level.
func (b BestScores) Get(level Level) int {
	switch level {
	case LevelEasy:
		return b.Easy
	case LevelNormal:
		return b.Normal
	case LevelHard:
		return b.Hard
	}
	return 0
}

// LevelBest is the body of GET and POST /api/typing/best.
type LevelBest struct {
	Level Level `json:"level"`
	Best  int   `json:"best"`
}

// SubmitResult is the outcome of a take-maximum write.
type SubmitResult struct {
	Level    Level
	Best     int
	Previous int
}

// Improved reports whether the write raised the stored best.
func (r SubmitResult) Improved() bool {
	return r.Best > r.Previous
}

// LeaderboardEntry is a row of the per-level summary board.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Leaderboard is the body of GET /api/leaderboard.
type Leaderboard struct {
	Easy   []LeaderboardEntry `json:"easy"`
	Normal []LeaderboardEntry `json:"normal"`
	Hard   []LeaderboardEntry `json:"hard"`
}

// RankedBest is a row of GET /api/typing/leaderboard.
type RankedBest struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Best      int       `json:"best" db:"best"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the body of GET and PUT /api/me.
type Profile struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	BestScores BestScores `json:"bestScores"`
}
