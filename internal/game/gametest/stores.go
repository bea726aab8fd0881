package gametest

import (
	"context"
	"sync"

	"wordrush/internal/game"
	"wordrush/shared/models"
)

// MemoryBestStore is an in-memory take-maximum BestStore. Err, when set, fails every call.
type MemoryBestStore struct {
	mu      sync.Mutex
	bests   map[models.Level]int
	submits []int
	Err     error
}

func NewMemoryBestStore() *MemoryBestStore {
	return &MemoryBestStore{bests: map[models.Level]int{}}
}

func (s *MemoryBestStore) Best(_ context.Context, level models.Level) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.bests[level], nil
}

func (s *MemoryBestStore) SubmitBest(_ context.Context, level models.Level, score int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits = append(s.submits, score)
	if s.Err != nil {
		return 0, s.Err
	}
	if score > s.bests[level] {
		s.bests[level] = score
	}
	return s.bests[level], nil
}

// Set stores best directly, bypassing take-maximum.
func (s *MemoryBestStore) Set(level models.Level, best int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bests[level] = best
}

// Submits returns every submitted score in order.
func (s *MemoryBestStore) Submits() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.submits...)
}

// MemoryScoreStore is an in-memory ScoreStore.
type MemoryScoreStore struct {
	mu        sync.Mutex
	records   map[models.Level]game.Record
	lastLevel models.Level
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{records: map[models.Level]game.Record{}}
}

func (s *MemoryScoreStore) LoadRecord(level models.Level) (game.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[level], nil
}

func (s *MemoryScoreStore) SaveRecord(level models.Level, rec game.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[level] = rec
	return nil
}

func (s *MemoryScoreStore) LastLevel() (models.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLevel, nil
}

func (s *MemoryScoreStore) SaveLastLevel(level models.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLevel = level
	return nil
}

// StaticSupply serves fixed phrases per level.
func StaticSupply(byLevel map[models.Level][]string) game.WordSupply {
	return game.WordSupplyFunc(func(_ context.Context, level models.Level) ([]game.Phrase, error) {
		var out []game.Phrase
		for _, t := range byLevel[level] {
			out = append(out, game.Phrase{Text: t})
		}
		return out, nil
	})
}
