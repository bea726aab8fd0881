package service

import (
	"context"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"
	"wordrush/shared/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSummaryLimit = 10
	MaxSummaryLimit     = 50
	DefaultTypingLimit  = 50
	MaxTypingLimit      = 200
)

// LeaderboardService builds the public leaderboards.
type LeaderboardService interface {
	// Summary returns the top positive bests of every level.
	Summary(ctx context.Context, limit int) (models.Leaderboard, error)
	// Typing returns the ranked bests of one level, served from cache when possible.
	Typing(ctx context.Context, level models.Level, limit int) ([]models.RankedBest, error)
}

type leaderboardServiceImpl struct {
	bestRepo interfaces.TypingBestRepository
	cache    interfaces.LeaderboardCache
	logger   *zap.Logger
}

// NewLeaderboardService creates a new LeaderboardService. cache may be nil.
func NewLeaderboardService(bestRepo interfaces.TypingBestRepository, cache interfaces.LeaderboardCache, logger *zap.Logger) LeaderboardService {
	return &leaderboardServiceImpl{
		bestRepo: bestRepo,
		cache:    cache,
		logger:   logger.Named("LeaderboardService"),
	}
}

func (s *leaderboardServiceImpl) Summary(ctx context.Context, limit int) (models.Leaderboard, error) {
	limit = utils.ClampLimit(limit, MaxSummaryLimit)

	levels := models.AllLevels()
	boards := make([][]models.LeaderboardEntry, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	for i, level := range levels {
		g.Go(func() error {
			rows, err := s.bestRepo.Top(gctx, level, limit, 0)
			if err != nil {
				return err
			}
			entries := make([]models.LeaderboardEntry, 0, len(rows))
			for _, r := range rows {
				entries = append(entries, models.LeaderboardEntry{Name: r.Name, Score: r.Best})
			}
			boards[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build leaderboard summary", zap.Error(err))
		return models.Leaderboard{}, err
	}

	return models.Leaderboard{Easy: boards[0], Normal: boards[1], Hard: boards[2]}, nil
}

func (s *leaderboardServiceImpl) Typing(ctx context.Context, level models.Level, limit int) ([]models.RankedBest, error) {
	if !level.Valid() {
		return nil, models.ErrInvalidLevel
	}
	limit = utils.ClampLimit(limit, MaxTypingLimit)

	if s.cache != nil {
		rows, ok, err := s.cache.Get(ctx, level, limit)
		if err != nil {
			s.logger.Warn("Leaderboard cache read failed, falling back to database", zap.Error(err))
		} else if ok {
			return rows, nil
		}
	}

	rows, err := s.bestRepo.Top(ctx, level, limit, -1)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, level, limit, rows); err != nil {
			s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
		}
	}
	return rows, nil
}
