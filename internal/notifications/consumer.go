package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mergington/pkg/logger"

	"github.com/IBM/sarama"
)

// EventHandler processes one decoded participant event
type EventHandler interface {
	HandleParticipantEvent(ctx context.Context, event *ParticipantEvent) error
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event *ParticipantEvent) error

func (f EventHandlerFunc) HandleParticipantEvent(ctx context.Context, event *ParticipantEvent) error {
	return f(ctx, event)
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeoutMs  int
	HeartbeatMs       int
	RetryBackoffMs    int
	MaxProcessingTime time.Duration
	AutoCommit        bool
	OffsetOldest      bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "mergington-roster-audit",
		Topics:            []string{"activity-participants"},
		SessionTimeoutMs:  30000,
		HeartbeatMs:       3000,
		RetryBackoffMs:    100,
		MaxProcessingTime: time.Minute,
		AutoCommit:        true,
		OffsetOldest:      true,
		MaxRetries:        3,
		RetryBackoff:      time.Second,
	}
}

// EventConsumer reads participant events from a consumer group
type EventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       EventHandler
	logger        *logger.Logger
	wg            sync.WaitGroup
}

func NewSaramaConsumerConfig(config *ConsumerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	return saramaConfig
}

func NewEventConsumer(config *ConsumerConfig, handler EventHandler, log *logger.Logger) (*EventConsumer, error) {
	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, NewSaramaConsumerConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return NewEventConsumerWithGroup(consumerGroup, config, handler, log), nil
}

// NewEventConsumerWithGroup wraps an existing consumer group
func NewEventConsumerWithGroup(group sarama.ConsumerGroup, config *ConsumerConfig, handler EventHandler, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		consumerGroup: group,
		config:        config,
		handler:       handler,
		logger:        log,
	}
}

// Start launches numWorkers consume loops; they run until ctx is cancelled
func (ec *EventConsumer) Start(ctx context.Context, numWorkers int) {
	ec.logger.Info("📥 Starting participant event consumers",
		slog.Int("workers", numWorkers),
		slog.Any("topics", ec.config.Topics),
	)

	go ec.handleErrors()

	for i := 0; i < numWorkers; i++ {
		ec.wg.Add(1)
		go func(workerID int) {
			defer ec.wg.Done()
			ec.runWorker(ctx, workerID)
		}(i)
	}
}

func (ec *EventConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{consumer: ec, workerID: workerID}

	for {
		if err := ec.consumerGroup.Consume(ctx, ec.config.Topics, handler); err != nil {
			ec.logger.Error("Error consuming participant events", slog.Int("worker", workerID), slog.Any("error", err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			ec.logger.Info("📥 Worker shutting down", slog.Int("worker", workerID))
			return
		}
	}
}

func (ec *EventConsumer) handleErrors() {
	for err := range ec.consumerGroup.Errors() {
		ec.logger.Error("Consumer group error", slog.Any("error", err))
	}
}

// Stop waits for workers to exit then closes the group. Cancel the Start context first.
func (ec *EventConsumer) Stop() error {
	ec.wg.Wait()
	if err := ec.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	ec.logger.Info("📥 Participant event consumer stopped")
	return nil
}

type consumerGroupHandler struct {
	consumer *EventConsumer
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.consumer.processMessage(session.Context(), message); err != nil {
				h.consumer.logger.Error("Failed to process participant event",
					slog.Int("worker", h.workerID),
					slog.Int64("offset", message.Offset),
					slog.Any("error", err),
				)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// processMessage returns nil for messages that should be marked consumed.
// Undecodable payloads are logged and skipped so they do not block the partition.
func (ec *EventConsumer) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event ParticipantEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		ec.logger.Warn("Skipping undecodable participant event",
			slog.String("topic", message.Topic),
			slog.Int("partition", int(message.Partition)),
			slog.Int64("offset", message.Offset),
			slog.Any("error", err),
		)
		return nil
	}

	return ec.executeWithRetry(ctx, &event)
}

func (ec *EventConsumer) executeWithRetry(ctx context.Context, event *ParticipantEvent) error {
	maxRetries := ec.config.MaxRetries
	backoff := ec.config.RetryBackoff

	for attempt := 0; ; attempt++ {
		err := ec.handler.HandleParticipantEvent(ctx, event)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return fmt.Errorf("handler failed after %d attempts: %w", attempt+1, err)
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NewAuditHandler logs every roster change it sees
func NewAuditHandler(log *logger.Logger) EventHandler {
	return EventHandlerFunc(func(ctx context.Context, event *ParticipantEvent) error {
		log.InfoContext(ctx, "Roster change",
			slog.String("id", event.ID.String()),
			slog.String("type", string(event.Type)),
			slog.String("activity", event.Activity),
			slog.String("email", event.Email),
			slog.Time("occurred_at", event.OccurredAt),
		)
		return nil
	})
}
