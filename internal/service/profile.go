package service

import (
	"context"
	"fmt"
	"strings"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService reads and edits the signed-in user's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.Profile, error)
}

type profileServiceImpl struct {
	userRepo interfaces.UserRepository
	bestRepo interfaces.TypingBestRepository
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo interfaces.UserRepository, bestRepo interfaces.TypingBestRepository, logger *zap.Logger) ProfileService {
	return &profileServiceImpl{
		userRepo: userRepo,
		bestRepo: bestRepo,
		logger:   logger.Named("ProfileService"),
	}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withBests(ctx, user)
}

func (s *profileServiceImpl) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	user, err := s.userRepo.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Profile name updated", zap.String("userID", userID.String()))
	return s.withBests(ctx, user)
}

func (s *profileServiceImpl) withBests(ctx context.Context, user *models.User) (*models.Profile, error) {
	bests, err := s.bestRepo.GetAll(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load best scores: %w", err)
	}
	return &models.Profile{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		BestScores: bests,
	}, nil
}
