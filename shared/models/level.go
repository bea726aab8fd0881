package models

import (
	"fmt"
	"strings"
	"time"
)

// Level is one of the fixed difficulty tiers.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelNormal Level = "normal"
	LevelHard   Level = "hard"
)

// LevelMeta holds the per-level constants of a typing round.
type LevelMeta struct {
	Label      string
	Duration   int // seconds per phrase
	Multiplier float64
}

var levelMeta = map[Level]LevelMeta{
	LevelEasy:   {Label: "Easy", Duration: 15, Multiplier: 1},
	LevelNormal: {Label: "Normal", Duration: 15, Multiplier: 2},
	LevelHard:   {Label: "Hard", Duration: 15, Multiplier: 3},
}

// AllLevels returns the levels in display order.
func AllLevels() []Level {
	return []Level{LevelEasy, LevelNormal, LevelHard}
}

// ParseLevel normalises s and validates it against the known levels.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// ParseLevelOr is ParseLevel with def substituted for an empty string.
func ParseLevelOr(s string, def Level) (Level, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseLevel(s)
}

func (l Level) Valid() bool {
	_, ok := levelMeta[l]
	return ok
}

// Meta returns the constants for l. Unknown levels get the easy settings.
func (l Level) Meta() LevelMeta {
	if m, ok := levelMeta[l]; ok {
		return m
	}
	return levelMeta[LevelEasy]
}

// RoundDuration is Meta().Duration as a time.Duration.
func (l Level) RoundDuration() time.Duration {
	return time.Duration(l.Meta().Duration) * time.Second
}

func (l Level) String() string {
	return string(l)
}
