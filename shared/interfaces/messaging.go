package interfaces

import (
	"context"

	"wordrush/shared/models"
)

// BestEventPublisher publishes best-score improvements.
type BestEventPublisher interface {
	PublishBestImproved(ctx context.Context, event models.BestImprovedEvent) error
}

// BestEventBroadcaster fans an improvement out to live subscribers.
type BestEventBroadcaster interface {
	BroadcastBestImproved(event models.BestImprovedEvent)
}
