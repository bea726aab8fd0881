package models

import (
	"time"

	"github.com/google/uuid"
)

// Word is a phrase stored for a level.
type Word struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Term      string    `db:"term" json:"term"`
	Level     Level     `db:"level" json:"level"`
	Hint      string    `db:"hint" json:"hint"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// WordInput is a word to be inserted.
type WordInput struct {
	Term  string `json:"term"`
	Level Level  `json:"level"`
	Hint  string `json:"hint"`
}

// ImportSummary reports the outcome of a bulk word import.
type ImportSummary struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}
