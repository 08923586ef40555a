package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/zap"
)

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	attempts uint
	backoff  time.Duration
}

// WithRetries makes the consumer call a failing handler up to attempts times,
// waiting linearly longer between calls, before the message is nacked.
func WithRetries(attempts uint, wait time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		if attempts > 0 {
			c.attempts = attempts
		}

		c.backoff = wait
	}
}

// Consumer decodes JSON messages of one topic into T and hands them to a handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	config     consumerConfig
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer for topic. Without options a failing handler
// call nacks the message immediately.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	config := consumerConfig{attempts: 1}
	for _, opt := range opts {
		opt(&config)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		config:     config,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until Shutdown.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return err
	}

	go func() {
		defer close(c.done)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				c.process(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	correlationID := middleware.MessageCorrelationID(msg)
	logger := c.logger.With(
		zap.String("messageId", msg.UUID),
		zap.String("correlationId", correlationID),
	)

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error("dropping undecodable event", zap.Error(err))
		msg.Nack()

		return
	}

	ctx = ContextWithCorrelationID(ctx, correlationID)

	err := retry.Retry(func(attempt uint) error {
		err := c.handler(ctx, &event)
		if err != nil {
			logger.Warn("event handler attempt failed", zap.Uint("attempt", attempt), zap.Error(err))
		}

		return err
	},
		strategy.Limit(c.config.attempts),
		strategy.Backoff(backoff.Linear(c.config.backoff)),
	)
	if err != nil {
		logger.Error("event handler failed", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()
	logger.Debug("processed event")
}

// Shutdown stops the consumer and waits for the in-flight message. It is a
// no-op on a consumer that was never started.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
