package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mergington/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher defines the contract for announcing roster changes
type Publisher interface {
	PublishParticipantEvent(ctx context.Context, event *ParticipantEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka participant producer
type KafkaProducerConfig struct {
	Brokers         []string
	Topic           string
	ClientID        string
	RetryMax        int
	TimeoutMs       int
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "activity-participants",
		ClientID:        "mergington-activities",
		RetryMax:        3,
		TimeoutMs:       10000,             // 10 seconds
		RequiredAcks:    sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType: sarama.CompressionSnappy,
	}
}

// NewSaramaConfig builds the producer settings shared by the real producer and tests
func NewSaramaConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond

	// Hash partitioner so one activity's events stay ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes participant events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		config:   config,
		logger:   log,
	}
}

// PublishParticipantEvent publishes a single event to Kafka
func (kp *KafkaPublisher) PublishParticipantEvent(ctx context.Context, event *ParticipantEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal participant event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send participant event to Kafka: %w", err)
	}

	kp.logger.DebugContext(ctx, "Participant event published",
		slog.String("topic", kp.config.Topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(event.Type)),
		slog.String("activity", event.Activity),
	)
	return nil
}

// createHeaders creates Kafka headers for participant events
func (kp *KafkaPublisher) createHeaders(event *ParticipantEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("producer"), Value: []byte(kp.config.ClientID)},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kp *KafkaPublisher) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// LogPublisher writes events to the application log. Used when Kafka is disabled.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (lp *LogPublisher) PublishParticipantEvent(ctx context.Context, event *ParticipantEvent) error {
	lp.logger.InfoContext(ctx, "Participant event",
		slog.String("id", event.ID.String()),
		slog.String("type", string(event.Type)),
		slog.String("activity", event.Activity),
		slog.String("email", event.Email),
	)
	return nil
}

func (lp *LogPublisher) Close() error {
	return nil
}
