package interfaces

import (
	"context"

	"wordrush/shared/models"

	"github.com/google/uuid"
)

// TokenRepository tracks issued access tokens (Redis) so they can be revoked.
type TokenRepository interface {
	// SetToken stores AccessUUID -> UserID until the token expires.
	SetToken(ctx context.Context, td *models.TokenDetails) error

	// GetUserIDByAccessUUID returns models.ErrTokenNotFound if the token was revoked or expired.
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error)

	// DeleteToken revokes a single access token. Returns the number of keys removed.
	DeleteToken(ctx context.Context, userID uuid.UUID, accessUUID string) (int64, error)

	// DeleteTokensByUserID revokes every token of a user.
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
