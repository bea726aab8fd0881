package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ interfaces.BestEventPublisher = (*BestEventPublisher)(nil)

// BestEventPublisher publishes best.improved events to a fanout exchange.
type BestEventPublisher struct {
	ch       Channel
	exchange string
	logger   *zap.Logger
}

// NewBestEventPublisher declares the exchange and returns a publisher on ch.
func NewBestEventPublisher(ch Channel, exchange string, logger *zap.Logger) (*BestEventPublisher, error) {
	if ch == nil {
		return nil, errors.New("rabbitmq channel is nil")
	}
	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}
	logger = logger.Named("BestEventPublisher").With(zap.String("exchange", exchange))
	logger.Info("Best events exchange declared")
	return &BestEventPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *BestEventPublisher) PublishBestImproved(ctx context.Context, event models.BestImprovedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal best.improved event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		"",    // routing key, ignored by fanout
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  jsonContentType,
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID,
			Type:         bestImprovedType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish best.improved event", zap.String("eventID", event.EventID), zap.Error(err))
		return fmt.Errorf("failed to publish best.improved event: %w", err)
	}

	p.logger.Debug("best.improved event published",
		zap.String("eventID", event.EventID),
		zap.String("level", event.Level.String()),
		zap.Int("best", event.Best),
	)
	return nil
}

// Close closes the underlying channel.
func (p *BestEventPublisher) Close() error {
	return p.ch.Close()
}
