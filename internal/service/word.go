package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const importWorkers = 4

// DefaultWords is inserted into an empty words table at startup.
var DefaultWords = []models.WordInput{
	{Term: "apple", Level: models.LevelEasy, Hint: "a red or green fruit"},
	{Term: "orange", Level: models.LevelEasy, Hint: "an orange fruit"},
	{Term: "student", Level: models.LevelEasy, Hint: "someone who studies"},
	{Term: "practice makes perfect", Level: models.LevelNormal, Hint: "practise often to get good"},
	{Term: "finish your homework", Level: models.LevelNormal, Hint: "get your homework done"},
	{Term: "Simplicity is the ultimate sophistication", Level: models.LevelHard},
	{Term: "Consistency beats intensity in the long run", Level: models.LevelHard},
}

// WordService manages the phrase catalogue.
type WordService interface {
	List(ctx context.Context, level *models.Level) ([]models.Word, error)
	Random(ctx context.Context, level models.Level) (*models.Word, error)
	Create(ctx context.Context, in models.WordInput) (*models.Word, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Seed inserts items unordered, skipping duplicates, and returns the number inserted.
	Seed(ctx context.Context, items []models.WordInput) (int, error)
	// Import loads CSV or TSV text. Rows without a valid level use defaultLevel.
	Import(ctx context.Context, data []byte, filename string, defaultLevel models.Level) (models.ImportSummary, error)
	// SeedDefaults fills an empty catalogue with DefaultWords.
	SeedDefaults(ctx context.Context) (int, error)
}

type wordServiceImpl struct {
	repo     interfaces.WordRepository
	logger   *zap.Logger
	onImport func(models.ImportSummary)
}

// NewWordService creates a new WordService. onImport, if set, observes every finished import.
func NewWordService(repo interfaces.WordRepository, logger *zap.Logger, onImport func(models.ImportSummary)) WordService {
	return &wordServiceImpl{
		repo:     repo,
		logger:   logger.Named("WordService"),
		onImport: onImport,
	}
}

func (s *wordServiceImpl) List(ctx context.Context, level *models.Level) ([]models.Word, error) {
	if level != nil && !level.Valid() {
		return nil, models.ErrInvalidLevel
	}
	return s.repo.List(ctx, level)
}

func (s *wordServiceImpl) Random(ctx context.Context, level models.Level) (*models.Word, error) {
	if !level.Valid() {
		return nil, models.ErrInvalidLevel
	}
	return s.repo.Random(ctx, level)
}

func (s *wordServiceImpl) Create(ctx context.Context, in models.WordInput) (*models.Word, error) {
	in, err := normalizeWord(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

func (s *wordServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *wordServiceImpl) Seed(ctx context.Context, items []models.WordInput) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: items must be a non-empty list", models.ErrInvalidInput)
	}
	valid := make([]models.WordInput, 0, len(items))
	for _, it := range items {
		norm, err := normalizeWord(it)
		if err != nil {
			s.logger.Debug("Skipping invalid seed item", zap.String("term", it.Term), zap.Error(err))
			continue
		}
		valid = append(valid, norm)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return s.repo.InsertMany(ctx, valid)
}

func (s *wordServiceImpl) Import(ctx context.Context, data []byte, filename string, defaultLevel models.Level) (models.ImportSummary, error) {
	if !defaultLevel.Valid() {
		return models.ImportSummary{}, models.ErrInvalidLevel
	}
	rows, err := ParseWordImport(data, filename)
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if len(rows) == 0 {
		return models.ImportSummary{}, fmt.Errorf("%w: file is empty or has no terms", models.ErrInvalidInput)
	}

	var inserted, duplicates, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(importWorkers)
	for _, row := range rows {
		g.Go(func() error {
			level := models.Level(row.Level)
			if !level.Valid() {
				level = defaultLevel
			}
			_, err := s.Create(ctx, models.WordInput{Term: row.Term, Hint: row.Hint, Level: level})
			switch {
			case err == nil:
				inserted.Add(1)
			case errors.Is(err, models.ErrWordAlreadyExists):
				duplicates.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := models.ImportSummary{
		Inserted:   int(inserted.Load()),
		Duplicates: int(duplicates.Load()),
		Failed:     int(failed.Load()),
	}
	s.logger.Info("Word import finished",
		zap.String("filename", filename),
		zap.Int("rows", len(rows)),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
	)
	if s.onImport != nil {
		s.onImport(summary)
	}
	return summary, nil
}

func (s *wordServiceImpl) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("Words table not empty, skipping default seed", zap.Int64("count", n))
		return 0, nil
	}
	inserted, err := s.repo.InsertMany(ctx, DefaultWords)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Seeded default words", zap.Int("inserted", inserted))
	return inserted, nil
}

func normalizeWord(in models.WordInput) (models.WordInput, error) {
	in.Term = strings.TrimSpace(in.Term)
	in.Hint = strings.TrimSpace(in.Hint)
	if in.Term == "" || in.Level == "" {
		return in, fmt.Errorf("%w: term and level are required", models.ErrInvalidInput)
	}
	level, err := models.ParseLevel(string(in.Level))
	if err != nil {
		return in, err
	}
	in.Level = level
	return in, nil
}
