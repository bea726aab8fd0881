package messaging

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const (
	bestImprovedType = "best.improved"
	bestExchangeType = "fanout"
	consumerPrefetch = 10
	jsonContentType  = "application/json"
)

// Channel is the subset of *amqp091.Channel used by the publisher and consumer.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Cancel(consumer string, noWait bool) error
	NotifyClose(c chan *amqp091.Error) chan *amqp091.Error
	Close() error
}

var _ Channel = (*amqp091.Channel)(nil)

// declareExchange declares the durable fanout exchange every server instance binds to.
func declareExchange(ch Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, bestExchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	return nil
}
