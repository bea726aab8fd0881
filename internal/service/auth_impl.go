package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"wordrush/internal/config"
	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to new passwords set through ChangePassword.
const MinPasswordLength = 6

var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cfg       *config.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
		now:       time.Now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	logFields := []zap.Field{zap.String("name", name), zap.String("email", email)}

	if name == "" || email == "" || password == "" {
		s.logger.Warn("Registration attempt with missing fields", logFields...)
		return nil, fmt.Errorf("%w: name, email and password are required", models.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("%w: invalid email format", models.ErrInvalidInput)
	}

	hashed, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	// Duplicates surface as ErrEmailAlreadyExists from the unique constraint.
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return &models.AuthResult{Token: token, User: user.Public()}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("userID", user.ID.String()))
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return &models.AuthResult{Token: token, User: user.Public()}, nil
}

// Logout succeeds even if the token is already gone.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID, accessUUID string) error {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("accessUUID", accessUUID))
	deleted, err := s.tokenRepo.DeleteToken(ctx, userID, accessUUID)
	if err != nil {
		log.Error("Failed to delete token during logout", zap.Error(err))
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if deleted == 0 {
		log.Info("No token found to delete during logout (already expired or logged out)")
	}
	return nil
}

func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			s.logger.Debug("Access token verification failed: expired")
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			s.logger.Warn("Access token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse access token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, models.ErrTokenInvalid
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, models.ErrTokenInvalid
	}

	storedID, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token not found in store (revoked/logged out)", zap.String("accessUUID", claims.ID))
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}
	if storedID != userID {
		s.logger.Warn("Access token subject does not match stored owner",
			zap.String("subject", userID.String()), zap.String("stored", storedID.String()))
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	log := s.logger.With(zap.String("userID", userID.String()))
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: oldPassword and newPassword are required", models.ErrInvalidInput)
	}
	if len([]rune(newPassword)) < MinPasswordLength {
		return fmt.Errorf("%w: new password must be at least %d characters", models.ErrInvalidInput, MinPasswordLength)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPasswordHash(oldPassword, user.PasswordHash, s.cfg.PasswordPepper) {
		log.Warn("Password change rejected: wrong old password")
		return models.ErrWrongPassword
	}

	hashed, err := hashPassword(newPassword, s.cfg.PasswordPepper)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hashed); err != nil {
		return err
	}
	log.Info("Password changed")
	return nil
}

func (s *authServiceImpl) issueToken(ctx context.Context, user *models.User) (string, error) {
	td, err := s.createToken(user)
	if err != nil {
		s.logger.Error("Failed to create token", zap.Error(err), zap.String("userID", user.ID.String()))
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	if err := s.tokenRepo.SetToken(ctx, td); err != nil {
		return "", fmt.Errorf("failed to save token details: %w", err)
	}
	return td.AccessToken, nil
}

func (s *authServiceImpl) createToken(user *models.User) (*models.TokenDetails, error) {
	now := s.now()
	td := &models.TokenDetails{
		AccessUUID: uuid.NewString(),
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.cfg.JWTExpires).Unix(),
	}

	claims := &models.Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        td.AccessUUID,
			Subject:   user.ID.String(),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(time.Unix(td.ExpiresAt, 0)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	td.AccessToken = signed
	return td, nil
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

func hashPassword(password, pepper string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(applyPepper(password, pepper), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash, pepper string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), applyPepper(password, pepper)) == nil
}
