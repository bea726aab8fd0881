package interfaces

import (
	"context"

	"wordrush/shared/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data persistence (PostgreSQL).
type UserRepository interface {
	// CreateUser inserts a new user and fills in ID and timestamps.
	// Returns models.ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetUserByEmail returns models.ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateName changes the display name and returns the updated user.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, newPasswordHash string) error

	// GetUsersByIDs returns the users found among ids, in no particular order.
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}
