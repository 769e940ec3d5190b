package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader    messageReader
	baseDelay time.Duration
	maxDelay  time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return newConsumer(reader)
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{
		reader:    reader,
		baseDelay: 500 * time.Millisecond,
		maxDelay:  30 * time.Second,
	}
}

// Consume runs handler for every event until ctx is cancelled. A failing
// handler is retried on the same message with backoff; nothing after it is
// fetched or committed until it succeeds.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	fetchFailures := 0
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			fetchFailures++
			logger.Log.WithError(err).WithField("attempt", fetchFailures).Error("Failed to fetch message")
			if err := c.wait(ctx, fetchFailures); err != nil {
				return err
			}
			continue
		}
		fetchFailures = 0

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event")
			c.commit(ctx, message)
			continue
		}

		if err := c.handle(ctx, handler, event); err != nil {
			return err
		}
		c.commit(ctx, message)
	}
}

func (c *Consumer) handle(ctx context.Context, handler EventHandler, event models.Event) error {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"attempt":    attempt,
		}).Error("Failed to process event, retrying")
		if err := c.wait(ctx, attempt); err != nil {
			return err
		}
	}
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to commit message")
	}
}

// wait sleeps for the attempt's backoff, doubling from baseDelay up to maxDelay.
func (c *Consumer) wait(ctx context.Context, attempt int) error {
	delay := c.baseDelay
	for i := 1; i < attempt && delay < c.maxDelay; i++ {
		delay *= 2
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
