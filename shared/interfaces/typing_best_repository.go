package interfaces

import (
	"context"

	"wordrush/shared/models"

	"github.com/google/uuid"
)

// TypingBestRepository stores best scores under take-maximum semantics.
type TypingBestRepository interface {
	// Get returns 0 when the user has no record for the level.
	Get(ctx context.Context, userID uuid.UUID, level models.Level) (int, error)

	// GetAll returns the bests of every level, zero-filled.
	GetAll(ctx context.Context, userID uuid.UUID) (models.BestScores, error)

	// SubmitMax applies best = max(best, score) and reports the previous and resulting values.
	SubmitMax(ctx context.Context, userID uuid.UUID, level models.Level, score int) (models.SubmitResult, error)

	// Top returns the bests of a level above minBest, ordered by best desc, updated_at asc.
	Top(ctx context.Context, level models.Level, limit int, minBest int) ([]models.RankedBest, error)
}
