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

var _ interfaces.WordRepository = (*pgWordRepository)(nil)

const (
	wordColumns = `id, term, level, hint, created_at`

	createWordQuery     = `INSERT INTO words (term, level, hint) VALUES ($1, $2, $3) RETURNING ` + wordColumns
	listWordsQuery      = `SELECT ` + wordColumns + ` FROM words ORDER BY term ASC`
	listLevelWordsQuery = `SELECT ` + wordColumns + ` FROM words WHERE level = $1 ORDER BY term ASC`
	randomWordQuery     = `SELECT ` + wordColumns + ` FROM words WHERE level = $1 ORDER BY random() LIMIT 1`
	deleteWordQuery     = `DELETE FROM words WHERE id = $1`
	insertWordIgnoreDup = `INSERT INTO words (term, level, hint) VALUES ($1, $2, $3) ON CONFLICT (term, level) DO NOTHING`
	countWordsQuery     = `SELECT COUNT(*) FROM words`
)

type pgWordRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgWordRepository creates a new PostgreSQL-backed WordRepository.
func NewPgWordRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.WordRepository {
	return &pgWordRepository{
		db:     db,
		logger: logger.Named("PgWordRepo"),
	}
}

func (r *pgWordRepository) Create(ctx context.Context, in models.WordInput) (*models.Word, error) {
	log := r.logger.With(zap.String("term", in.Term), zap.String("level", in.Level.String()))

	var w models.Word
	if err := pgxscan.Get(ctx, r.db, &w, createWordQuery, in.Term, in.Level, in.Hint); err != nil {
		if _, ok := uniqueViolation(err); ok {
			log.Warn("Attempted to create duplicate word")
			return nil, models.ErrWordAlreadyExists
		}
		log.Error("Failed to create word", zap.Error(err))
		return nil, fmt.Errorf("failed to create word: %w", err)
	}
	log.Info("Word created", zap.String("wordID", w.ID.String()))
	return &w, nil
}

func (r *pgWordRepository) List(ctx context.Context, level *models.Level) ([]models.Word, error) {
	words := []models.Word{}
	var err error
	if level == nil {
		err = pgxscan.Select(ctx, r.db, &words, listWordsQuery)
	} else {
		err = pgxscan.Select(ctx, r.db, &words, listLevelWordsQuery, *level)
	}
	if err != nil {
		r.logger.Error("Failed to list words", zap.Error(err))
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return words, nil
}

func (r *pgWordRepository) Random(ctx context.Context, level models.Level) (*models.Word, error) {
	var w models.Word
	if err := pgxscan.Get(ctx, r.db, &w, randomWordQuery, level); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNoWordsForLevel
		}
		r.logger.Error("Failed to get random word", zap.Error(err), zap.String("level", level.String()))
		return nil, fmt.Errorf("failed to get random word: %w", err)
	}
	return &w, nil
}

func (r *pgWordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteWordQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete word", zap.Error(err), zap.String("wordID", id.String()))
		return fmt.Errorf("failed to delete word: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrWordNotFound
	}
	r.logger.Info("Word deleted", zap.String("wordID", id.String()))
	return nil
}

// InsertMany sends every insert in one batch. Duplicates are skipped by ON CONFLICT and
// a failing row does not stop the remaining ones.
func (r *pgWordRepository) InsertMany(ctx context.Context, items []models.WordInput) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertWordIgnoreDup, it.Term, it.Level, it.Hint)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	var firstErr error
	for i := range items {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Warn("Batch word insert failed", zap.Error(err), zap.String("term", items[i].Term))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		inserted += int(tag.RowsAffected())
	}

	r.logger.Info("Batch word insert finished", zap.Int("requested", len(items)), zap.Int("inserted", inserted))
	if inserted == 0 && firstErr != nil {
		return 0, fmt.Errorf("failed to insert words: %w", firstErr)
	}
	return inserted, nil
}

func (r *pgWordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countWordsQuery).Scan(&count); err != nil {
		r.logger.Error("Failed to count words", zap.Error(err))
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}
