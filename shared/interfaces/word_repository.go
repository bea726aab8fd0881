package interfaces

import (
	"context"

	"wordrush/shared/models"

	"github.com/google/uuid"
)

// WordRepository persists the phrase lists.
type WordRepository interface {
	// Create returns models.ErrWordAlreadyExists if (term, level) is taken.
	Create(ctx context.Context, in models.WordInput) (*models.Word, error)

	// List returns words sorted by term. A nil level lists every level.
	List(ctx context.Context, level *models.Level) ([]models.Word, error)

	// Random returns models.ErrNoWordsForLevel when the level is empty.
	Random(ctx context.Context, level models.Level) (*models.Word, error)

	// Delete returns models.ErrWordNotFound if nothing was removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// InsertMany inserts items and skips duplicates. Returns how many rows were inserted.
	InsertMany(ctx context.Context, items []models.WordInput) (int, error)

	// Count returns the number of stored words.
	Count(ctx context.Context) (int64, error)
}
