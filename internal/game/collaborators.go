package game

import (
	"context"
	"time"

	"wordrush/shared/models"
)

// WordSupply returns the candidate phrases of a level.
type WordSupply interface {
	Phrases(ctx context.Context, level models.Level) ([]Phrase, error)
}

// WordSupplyFunc adapts a function to WordSupply.
type WordSupplyFunc func(ctx context.Context, level models.Level) ([]Phrase, error)

func (f WordSupplyFunc) Phrases(ctx context.Context, level models.Level) ([]Phrase, error) {
	return f(ctx, level)
}

// BestStore is the remote take-maximum best-score service.
type BestStore interface {
	Best(ctx context.Context, level models.Level) (int, error)
	// SubmitBest applies best = max(best, score) and returns the stored best.
	SubmitBest(ctx context.Context, level models.Level, score int) (int, error)
}

// Record is the per-level score record of the player.
type Record struct {
	Score  int `json:"score"`
	Streak int `json:"streak"`
	Best   int `json:"best"`
}

// ScoreStore is the player's local durable store.
type ScoreStore interface {
	LoadRecord(level models.Level) (Record, error)
	SaveRecord(level models.Level, rec Record) error
	// LastLevel returns "" when nothing was saved.
	LastLevel() (models.Level, error)
	SaveLastLevel(level models.Level) error
}

// Narration is an in-flight narration.
type Narration interface {
	// Cancel guarantees the completion callback is not called afterwards.
	Cancel()
}

// Narrator speaks text and calls done exactly once when finished, unless cancelled.
type Narrator interface {
	Narrate(text string, done func()) Narration
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock is a Clock backed by time.AfterFunc.
func RealClock() Clock { return realClock{} }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type instantNarrator struct{}

type noopNarration struct{}

func (noopNarration) Cancel() {}

// InstantNarrator completes every narration immediately.
func InstantNarrator() Narrator { return instantNarrator{} }

func (instantNarrator) Narrate(_ string, done func()) Narration {
	done()
	return noopNarration{}
}
