package service

import (
	"context"

	"wordrush/shared/models"

	"github.com/google/uuid"
)

// AuthService covers registration, login, session revocation and password changes.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Logout(ctx context.Context, userID uuid.UUID, accessUUID string) error
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}
