package database

import (
	"context"
	"errors"
	"fmt"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.TypingBestRepository = (*pgTypingBestRepository)(nil)

const (
	getBestQuery     = `SELECT best FROM typing_bests WHERE user_id = $1 AND level = $2`
	getAllBestsQuery = `SELECT level, best FROM typing_bests WHERE user_id = $1`

	// prev captures the stored best before the upsert; 0 for a first write.
	submitMaxQuery = `
WITH prev AS (
	SELECT best FROM typing_bests WHERE user_id = $1 AND level = $2 FOR UPDATE
)
INSERT INTO typing_bests (user_id, level, best, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id, level) DO UPDATE SET
	best = GREATEST(typing_bests.best, EXCLUDED.best),
	updated_at = CASE WHEN EXCLUDED.best > typing_bests.best THEN NOW() ELSE typing_bests.updated_at END
RETURNING best, COALESCE((SELECT best FROM prev), 0)`

	topBestsQuery = `
SELECT tb.user_id, COALESCE(NULLIF(u.name, ''), 'Player') AS name, tb.best, tb.updated_at
FROM typing_bests tb
JOIN users u ON u.id = tb.user_id
WHERE tb.level = $1 AND tb.best > $2
ORDER BY tb.best DESC, tb.updated_at ASC
LIMIT $3`
)

type pgTypingBestRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgTypingBestRepository creates a new PostgreSQL-backed TypingBestRepository.
func NewPgTypingBestRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.TypingBestRepository {
	return &pgTypingBestRepository{
		db:     db,
		logger: logger.Named("PgTypingBestRepo"),
	}
}

func (r *pgTypingBestRepository) Get(ctx context.Context, userID uuid.UUID, level models.Level) (int, error) {
	var best int
	err := r.db.QueryRow(ctx, getBestQuery, userID, level).Scan(&best)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error("Failed to get best score", zap.Error(err),
			zap.String("userID", userID.String()), zap.String("level", level.String()))
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

func (r *pgTypingBestRepository) GetAll(ctx context.Context, userID uuid.UUID) (models.BestScores, error) {
	var rows []models.LevelBest
	if err := pgxscan.Select(ctx, r.db, &rows, getAllBestsQuery, userID); err != nil {
		r.logger.Error("Failed to get best scores", zap.Error(err), zap.String("userID", userID.String()))
		return models.BestScores{}, fmt.Errorf("failed to get best scores: %w", err)
	}

	var scores models.BestScores
	for _, row := range rows {
		scores.Set(row.Level, row.Best)
	}
	return scores, nil
}

func (r *pgTypingBestRepository) SubmitMax(ctx context.Context, userID uuid.UUID, level models.Level, score int) (models.SubmitResult, error) {
	log := r.logger.With(zap.String("userID", userID.String()), zap.String("level", level.String()), zap.Int("score", score))

	res := models.SubmitResult{Level: level}
	if err := r.db.QueryRow(ctx, submitMaxQuery, userID, level, score).Scan(&res.Best, &res.Previous); err != nil {
		log.Error("Failed to submit best score", zap.Error(err))
		return models.SubmitResult{}, fmt.Errorf("failed to submit best score: %w", err)
	}

	if res.Improved() {
		log.Info("Best score improved", zap.Int("previous", res.Previous), zap.Int("best", res.Best))
	} else {
		log.Debug("Best score unchanged", zap.Int("best", res.Best))
	}
	return res, nil
}

func (r *pgTypingBestRepository) Top(ctx context.Context, level models.Level, limit int, minBest int) ([]models.RankedBest, error) {
	rows := []models.RankedBest{}
	if err := pgxscan.Select(ctx, r.db, &rows, topBestsQuery, level, minBest, limit); err != nil {
		r.logger.Error("Failed to query leaderboard", zap.Error(err), zap.String("level", level.String()))
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
