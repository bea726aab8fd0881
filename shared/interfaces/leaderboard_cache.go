package interfaces

import (
	"context"

	"wordrush/shared/models"
)

// LeaderboardCache caches ranked leaderboards per level (Redis).
type LeaderboardCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, level models.Level, limit int) ([]models.RankedBest, bool, error)
	Set(ctx context.Context, level models.Level, limit int, rows []models.RankedBest) error
	// Invalidate drops every cached limit of the level.
	Invalidate(ctx context.Context, level models.Level) error
}
