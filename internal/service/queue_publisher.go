// Package queue_publisher publishes adoption domain events to RabbitMQ.
// Publishing is best-effort: errors are logged and returned so callers can
// ignore them without interrupting the request that caused the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/getapet/adoption-api/internal/queue"
)

// Publisher publishes adoption lifecycle events. Handlers depend on this
// interface so tests can swap in a recorder.
type Publisher interface {
	VisitScheduled(ctx context.Context, ev q.VisitScheduledEvent)
	AdoptionConcluded(ctx context.Context, ev q.AdoptionConcludedEvent)
}

// AMQPPublisher publishes to RabbitMQ, one short-lived connection per
// event. Event volume here is one message per adoption transition, so a
// pooled channel is not worth its failure modes.
type AMQPPublisher struct {
	Log *zap.Logger
}

func NewAMQPPublisher(log *zap.Logger) *AMQPPublisher { return &AMQPPublisher{Log: log} }

func (p *AMQPPublisher) VisitScheduled(ctx context.Context, ev q.VisitScheduledEvent) {
	p.publish(ctx, q.VisitScheduledQueue, ev)
}

func (p *AMQPPublisher) AdoptionConcluded(ctx context.Context, ev q.AdoptionConcludedEvent) {
	p.publish(ctx, q.AdoptionConcludedQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, ev any) {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.String("queue", queue), zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.String("queue", queue), zap.Error(err))
		return
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.String("queue", queue), zap.Error(err))
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.Log.Warn("rabbitmq: marshal event failed", zap.String("queue", queue), zap.Error(err))
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.String("queue", queue), zap.Error(err))
	}
}

// NopPublisher drops every event. Used when the broker is disabled and in
// tests that do not assert on events.
type NopPublisher struct{}

func (NopPublisher) VisitScheduled(context.Context, q.VisitScheduledEvent) {}

func (NopPublisher) AdoptionConcluded(context.Context, q.AdoptionConcludedEvent) {}
