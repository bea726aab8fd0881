package models

import (
	"time"

	"github.com/google/uuid"
)

// BestImprovedEvent is published whenever a stored best strictly increases.
type BestImprovedEvent struct {
	EventID    string    `json:"event_id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name,omitempty"`
	Level      Level     `json:"level"`
	Best       int       `json:"best"`
	Previous   int       `json:"previous"`
	OccurredAt time.Time `json:"occurred_at"`
}
