package mocks

import (
	"context"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.UserRepository       = (*UserRepository)(nil)
	_ interfaces.TokenRepository      = (*TokenRepository)(nil)
	_ interfaces.WordRepository       = (*WordRepository)(nil)
	_ interfaces.TypingBestRepository = (*TypingBestRepository)(nil)
	_ interfaces.LeaderboardCache     = (*LeaderboardCache)(nil)
	_ interfaces.BestEventPublisher   = (*BestEventPublisher)(nil)
	_ interfaces.BestEventBroadcaster = (*BestEventBroadcaster)(nil)
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, newPasswordHash string) error {
	args := m.Called(ctx, id, newPasswordHash)
	return args.Error(0)
}
func (m *UserRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) SetToken(ctx context.Context, td *models.TokenDetails) error {
	args := m.Called(ctx, td)
	return args.Error(0)
}
func (m *TokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, accessUUID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}
func (m *TokenRepository) DeleteToken(ctx context.Context, userID uuid.UUID, accessUUID string) (int64, error) {
	args := m.Called(ctx, userID, accessUUID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *TokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock WordRepository
type WordRepository struct {
	mock.Mock
}

func (m *WordRepository) Create(ctx context.Context, in models.WordInput) (*models.Word, error) {
	args := m.Called(ctx, in)
	w, _ := args.Get(0).(*models.Word)
	return w, args.Error(1)
}
func (m *WordRepository) List(ctx context.Context, level *models.Level) ([]models.Word, error) {
	args := m.Called(ctx, level)
	words, _ := args.Get(0).([]models.Word)
	return words, args.Error(1)
}
func (m *WordRepository) Random(ctx context.Context, level models.Level) (*models.Word, error) {
	args := m.Called(ctx, level)
	w, _ := args.Get(0).(*models.Word)
	return w, args.Error(1)
}
func (m *WordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *WordRepository) InsertMany(ctx context.Context, items []models.WordInput) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}
func (m *WordRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock TypingBestRepository
type TypingBestRepository struct {
	mock.Mock
}

func (m *TypingBestRepository) Get(ctx context.Context, userID uuid.UUID, level models.Level) (int, error) {
	args := m.Called(ctx, userID, level)
	return args.Int(0), args.Error(1)
}
func (m *TypingBestRepository) GetAll(ctx context.Context, userID uuid.UUID) (models.BestScores, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).(models.BestScores)
	return b, args.Error(1)
}
func (m *TypingBestRepository) SubmitMax(ctx context.Context, userID uuid.UUID, level models.Level, score int) (models.SubmitResult, error) {
	args := m.Called(ctx, userID, level, score)
	r, _ := args.Get(0).(models.SubmitResult)
	return r, args.Error(1)
}
func (m *TypingBestRepository) Top(ctx context.Context, level models.Level, limit int, minBest int) ([]models.RankedBest, error) {
	args := m.Called(ctx, level, limit, minBest)
	rows, _ := args.Get(0).([]models.RankedBest)
	return rows, args.Error(1)
}

// Mock LeaderboardCache
type LeaderboardCache struct {
	mock.Mock
}

func (m *LeaderboardCache) Get(ctx context.Context, level models.Level, limit int) ([]models.RankedBest, bool, error) {
	args := m.Called(ctx, level, limit)
	rows, _ := args.Get(0).([]models.RankedBest)
	return rows, args.Bool(1), args.Error(2)
}
func (m *LeaderboardCache) Set(ctx context.Context, level models.Level, limit int, rows []models.RankedBest) error {
	args := m.Called(ctx, level, limit, rows)
	return args.Error(0)
}
func (m *LeaderboardCache) Invalidate(ctx context.Context, level models.Level) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

// Mock BestEventPublisher
type BestEventPublisher struct {
	mock.Mock
}

func (m *BestEventPublisher) PublishBestImproved(ctx context.Context, event models.BestImprovedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Mock BestEventBroadcaster
type BestEventBroadcaster struct {
	mock.Mock
}

func (m *BestEventBroadcaster) BroadcastBestImproved(event models.BestImprovedEvent) {
	m.Called(event)
}
