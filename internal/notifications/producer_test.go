package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"mergington/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*KafkaPublisher, *mocks.SyncProducer) {
	cfg := DefaultKafkaProducerConfig()
	producer := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	return NewKafkaPublisherWithProducer(producer, cfg, logger.Discard()), producer
}

func TestKafkaPublisher_PublishParticipantEvent(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	event := NewParticipantEvent(ParticipantEventSignedUp, "Chess Club", "new@mergington.edu")

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "activity-participants" {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "Chess Club" {
			return fmt.Errorf("unexpected key %q", key)
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded ParticipantEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.ID != event.ID || decoded.Email != "new@mergington.edu" || decoded.Type != ParticipantEventSignedUp {
			return fmt.Errorf("unexpected payload %+v", decoded)
		}

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers["event_type"] != string(ParticipantEventSignedUp) {
			return fmt.Errorf("missing event_type header: %v", headers)
		}
		return nil
	})

	require.NoError(t, publisher.PublishParticipantEvent(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	publisher, producer := newTestPublisher(t)

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.PublishParticipantEvent(context.Background(),
		NewParticipantEvent(ParticipantEventUnregistered, "Chess Club", "gone@mergington.edu"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, publisher.Close())
}

func TestParticipantEvent_PartitionKey(t *testing.T) {
	event := NewParticipantEvent(ParticipantEventSignedUp, "Art Club", "a@mergington.edu")

	assert.Equal(t, "Art Club", event.GetPartitionKey())
	assert.False(t, event.OccurredAt.IsZero())
}

func TestLogPublisher(t *testing.T) {
	publisher := NewLogPublisher(logger.Discard())

	assert.NoError(t, publisher.PublishParticipantEvent(context.Background(),
		NewParticipantEvent(ParticipantEventSignedUp, "Art Club", "a@mergington.edu")))
	assert.NoError(t, publisher.Close())
}
