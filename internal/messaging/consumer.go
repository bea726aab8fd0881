package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"wordrush/shared/interfaces"
	"wordrush/shared/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// BestEventConsumer feeds best.improved events into a broadcaster.
// Each instance consumes from its own exclusive queue bound to the exchange,
// so every server process sees every event.
type BestEventConsumer struct {
	ch          Channel
	broadcaster interfaces.BestEventBroadcaster
	queue       string
	consumerTag string
	logger      *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewBestEventConsumer declares the exchange, an exclusive queue and the binding between them.
func NewBestEventConsumer(ch Channel, exchange string, broadcaster interfaces.BestEventBroadcaster, logger *zap.Logger) (*BestEventConsumer, error) {
	if ch == nil {
		return nil, errors.New("rabbitmq channel is nil")
	}
	if broadcaster == nil {
		return nil, errors.New("broadcaster is nil")
	}
	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to bind queue '%s' to '%s': %w", q.Name, exchange, err)
	}
	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	tag := fmt.Sprintf("best_events_consumer_%d", time.Now().UnixNano())
	c := &BestEventConsumer{
		ch:          ch,
		broadcaster: broadcaster,
		queue:       q.Name,
		consumerTag: tag,
		logger:      logger.Named("BestEventConsumer").With(zap.String("consumerTag", tag), zap.String("queue", q.Name)),
		stop:        make(chan struct{}),
	}
	c.logger.Info("BestEventConsumer initialized", zap.String("exchange", exchange))
	return c, nil
}

// StartConsuming blocks until Stop is called, ctx is done or the channel closes.
// An unexpected channel close is returned as an error.
func (c *BestEventConsumer) StartConsuming(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, c.consumerTag, false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}
	closed := c.ch.NotifyClose(make(chan *amqp091.Error, 1))

	c.logger.Info("Consumer started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stop:
			return nil
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				c.logger.Error("RabbitMQ channel closed unexpectedly", zap.Error(amqpErr))
				return amqpErr
			}
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Info("Deliveries channel closed")
				return nil
			}
			c.handle(d)
		}
	}
}

func (c *BestEventConsumer) handle(d amqp091.Delivery) {
	log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

	var event models.BestImprovedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || !event.Level.Valid() {
		log.Warn("Dropping malformed best.improved message", zap.Error(err), zap.ByteString("body", d.Body))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	c.broadcaster.BroadcastBestImproved(event)
	if err := d.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
	}
}

// Stop cancels the consumer and closes the channel. Safe to call more than once.
func (c *BestEventConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		if err := c.ch.Cancel(c.consumerTag, false); err != nil {
			c.logger.Warn("Failed to cancel consumer", zap.Error(err))
		}
		if err := c.ch.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			c.logger.Warn("Failed to close channel", zap.Error(err))
		}
		c.logger.Info("Consumer stopped")
	})
}
