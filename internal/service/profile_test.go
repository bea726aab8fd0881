package service

import (
	"context"
	"testing"

	"wordrush/shared/interfaces/mocks"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetProfile(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	bestRepo := new(mocks.TypingBestRepository)
	svc := NewProfileService(userRepo, bestRepo, zap.NewNop())
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Name: "Ann", Email: "ann@example.com", Role: models.RoleUser}

	userRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
	bestRepo.On("GetAll", ctx, user.ID).Return(models.BestScores{Easy: 15, Hard: 120}, nil).Once()

	p, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, models.BestScores{Easy: 15, Hard: 120}, p.BestScores)
}

func TestGetProfile_UnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := NewProfileService(userRepo, new(mocks.TypingBestRepository), zap.NewNop())
	id := uuid.New()
	userRepo.On("GetUserByID", mock.Anything, id).Return(nil, models.ErrUserNotFound).Once()

	_, err := svc.GetProfile(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUpdateName(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	bestRepo := new(mocks.TypingBestRepository)
	svc := NewProfileService(userRepo, bestRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.UpdateName(ctx, id, "   ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	userRepo.On("UpdateName", ctx, id, "Bea").Return(&models.User{ID: id, Name: "Bea"}, nil).Once()
	bestRepo.On("GetAll", ctx, id).Return(models.BestScores{}, nil).Once()
	p, err := svc.UpdateName(ctx, id, " Bea ")
	require.NoError(t, err)
	assert.Equal(t, "Bea", p.Name)
}
