package service

import (
	"context"
	"time"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScoreService exposes per-level best scores under take-maximum semantics.
type ScoreService interface {
	GetBest(ctx context.Context, userID uuid.UUID, level models.Level) (models.LevelBest, error)
	GetAll(ctx context.Context, userID uuid.UUID) (models.BestScores, error)
	// SubmitBest never lowers a stored best. The response carries the stored value.
	SubmitBest(ctx context.Context, userID uuid.UUID, level models.Level, score int) (models.LevelBest, error)
}

type scoreServiceImpl struct {
	bestRepo  interfaces.TypingBestRepository
	userRepo  interfaces.UserRepository
	cache     interfaces.LeaderboardCache
	publisher interfaces.BestEventPublisher
	logger    *zap.Logger
	onImprove func()
}

// NewScoreService creates a new ScoreService. cache and publisher may be nil.
// onImprove, if set, runs after every strict improvement.
func NewScoreService(
	bestRepo interfaces.TypingBestRepository,
	userRepo interfaces.UserRepository,
	cache interfaces.LeaderboardCache,
	publisher interfaces.BestEventPublisher,
	logger *zap.Logger,
	onImprove func(),
) ScoreService {
	return &scoreServiceImpl{
		bestRepo:  bestRepo,
		userRepo:  userRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("ScoreService"),
		onImprove: onImprove,
	}
}

func (s *scoreServiceImpl) GetBest(ctx context.Context, userID uuid.UUID, level models.Level) (models.LevelBest, error) {
	if !level.Valid() {
		return models.LevelBest{}, models.ErrInvalidLevel
	}
	best, err := s.bestRepo.Get(ctx, userID, level)
	if err != nil {
		return models.LevelBest{}, err
	}
	return models.LevelBest{Level: level, Best: best}, nil
}

func (s *scoreServiceImpl) GetAll(ctx context.Context, userID uuid.UUID) (models.BestScores, error) {
	return s.bestRepo.GetAll(ctx, userID)
}

func (s *scoreServiceImpl) SubmitBest(ctx context.Context, userID uuid.UUID, level models.Level, score int) (models.LevelBest, error) {
	if !level.Valid() {
		return models.LevelBest{}, models.ErrInvalidLevel
	}
	if score < 0 {
		return models.LevelBest{}, models.ErrInvalidScore
	}

	res, err := s.bestRepo.SubmitMax(ctx, userID, level, score)
	if err != nil {
		return models.LevelBest{}, err
	}
	if res.Improved() {
		s.afterImprovement(ctx, userID, res)
	}
	return models.LevelBest{Level: res.Level, Best: res.Best}, nil
}

// afterImprovement is best effort: the stored value is already authoritative.
func (s *scoreServiceImpl) afterImprovement(ctx context.Context, userID uuid.UUID, res models.SubmitResult) {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("level", res.Level.String()))

	if s.onImprove != nil {
		s.onImprove()
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, res.Level); err != nil {
			log.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}
	event := models.BestImprovedEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Level:      res.Level,
		Best:       res.Best,
		Previous:   res.Previous,
		OccurredAt: time.Now().UTC(),
	}
	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		event.Name = user.Name
	} else {
		log.Warn("Could not resolve user name for event", zap.Error(err))
	}
	if err := s.publisher.PublishBestImproved(ctx, event); err != nil {
		log.Error("Failed to publish best improvement", zap.Error(err), zap.String("eventID", event.EventID))
		return
	}
	log.Debug("Best improvement published", zap.String("eventID", event.EventID), zap.Int("best", res.Best))
}
