package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"wordrush/shared/interfaces/mocks"
	"wordrush/shared/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  map[string]string
	bindings   map[string]string
	published  []amqp091.Publishing
	publishErr error
	deliveries chan amqp091.Delivery
	closeNotes []chan *amqp091.Error
	cancelled  []string
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges:  map[string]string{},
		bindings:   map[string]string{},
		deliveries: make(chan amqp091.Delivery, 8),
	}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges[name] = kind
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	if name == "" {
		name = "amq.gen-test"
	}
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp091.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings[name] = exchange
	return nil
}

func (f *fakeChannel) Qos(int, int, bool) error { return nil }

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Cancel(consumer string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, consumer)
	return nil
}

func (f *fakeChannel) NotifyClose(c chan *amqp091.Error) chan *amqp091.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeNotes = append(f.closeNotes, c)
	return c
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) fail(err *amqp091.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.closeNotes {
		c <- err
	}
}

type fakeAcker struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *fakeAcker) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcker) Nack(tag uint64, _ bool, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcker) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked), len(a.nacked)
}

func TestPublisher_PublishBestImproved(t *testing.T) {
	ch := newFakeChannel()
	pub, err := NewBestEventPublisher(ch, "wordrush.best_improved", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "fanout", ch.exchanges["wordrush.best_improved"])

	event := models.BestImprovedEvent{EventID: "ev-1", UserID: uuid.New(), Level: models.LevelNormal, Best: 67, Previous: 40}
	require.NoError(t, pub.PublishBestImproved(context.Background(), event))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "ev-1", msg.MessageId)

	var decoded models.BestImprovedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, 67, decoded.Best)
	assert.Equal(t, models.LevelNormal, decoded.Level)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := newFakeChannel()
	ch.publishErr = errors.New("channel closed")
	pub, err := NewBestEventPublisher(ch, "x", zap.NewNop())
	require.NoError(t, err)

	err = pub.PublishBestImproved(context.Background(), models.BestImprovedEvent{Level: models.LevelEasy})
	assert.ErrorContains(t, err, "channel closed")
}

func TestNewBestEventConsumer_NilArgs(t *testing.T) {
	_, err := NewBestEventConsumer(nil, "x", &mocks.BestEventBroadcaster{}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewBestEventConsumer(newFakeChannel(), "x", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestConsumer_BroadcastsAndAcks(t *testing.T) {
	ch := newFakeChannel()
	broadcaster := &mocks.BestEventBroadcaster{}
	consumer, err := NewBestEventConsumer(ch, "wordrush.best_improved", broadcaster, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "wordrush.best_improved", ch.bindings["amq.gen-test"])

	event := models.BestImprovedEvent{EventID: "ev-2", Level: models.LevelHard, Best: 120}
	broadcaster.On("BroadcastBestImproved", mock.MatchedBy(func(e models.BestImprovedEvent) bool {
		return e.EventID == "ev-2" && e.Best == 120
	})).Return().Once()

	acker := &fakeAcker{}
	body, _ := json.Marshal(event)
	ch.deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: body}
	ch.deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("{not json")}
	ch.deliveries <- amqp091.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte(`{"level":"expert"}`)}

	done := make(chan error, 1)
	go func() { done <- consumer.StartConsuming(context.Background()) }()

	require.Eventually(t, func() bool {
		acked, nacked := acker.counts()
		return acked == 1 && nacked == 2
	}, 2*time.Second, 10*time.Millisecond)

	consumer.Stop()
	consumer.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.True(t, ch.closed)
	assert.Len(t, ch.cancelled, 1)
	broadcaster.AssertExpectations(t)
}

func TestConsumer_ChannelFailure(t *testing.T) {
	ch := newFakeChannel()
	consumer, err := NewBestEventConsumer(ch, "x", &mocks.BestEventBroadcaster{}, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- consumer.StartConsuming(context.Background()) }()

	require.Eventually(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return len(ch.closeNotes) == 1
	}, 2*time.Second, 10*time.Millisecond)
	ch.fail(&amqp091.Error{Code: 320, Reason: "CONNECTION_FORCED"})

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "CONNECTION_FORCED")
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not return")
	}
}

func TestConsumer_ContextCancel(t *testing.T) {
	consumer, err := NewBestEventConsumer(newFakeChannel(), "x", &mocks.BestEventBroadcaster{}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, consumer.StartConsuming(ctx))
}
