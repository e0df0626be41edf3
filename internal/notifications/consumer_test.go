package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"mergington/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records marked offsets; unused methods panic via the nil embed.
type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func newTestConsumer(handler EventHandler) *EventConsumer {
	cfg := DefaultConsumerConfig()
	cfg.MaxRetries = 2
	cfg.RetryBackoff = time.Millisecond
	return NewEventConsumerWithGroup(nil, cfg, handler, logger.Discard())
}

func encodedEvent(t *testing.T, eventType ParticipantEventType, email string, offset int64) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := NewParticipantEvent(eventType, "Chess Club", email).ToJSON()
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "activity-participants", Offset: offset, Value: payload}
}

func TestProcessMessage_DecodesEvent(t *testing.T) {
	var got *ParticipantEvent
	consumer := newTestConsumer(EventHandlerFunc(func(_ context.Context, event *ParticipantEvent) error {
		got = event
		return nil
	}))

	err := consumer.processMessage(context.Background(), encodedEvent(t, ParticipantEventUnregistered, "daniel@mergington.edu", 7))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ParticipantEventUnregistered, got.Type)
	assert.Equal(t, "Chess Club", got.Activity)
	assert.Equal(t, "daniel@mergington.edu", got.Email)
}

func TestProcessMessage_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	consumer := newTestConsumer(EventHandlerFunc(func(context.Context, *ParticipantEvent) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	assert.NoError(t, consumer.processMessage(context.Background(), encodedEvent(t, ParticipantEventSignedUp, "a@mergington.edu", 1)))
	assert.Equal(t, 3, calls)
}

func TestProcessMessage_GivesUp(t *testing.T) {
	calls := 0
	consumer := newTestConsumer(EventHandlerFunc(func(context.Context, *ParticipantEvent) error {
		calls++
		return errors.New("down")
	}))

	err := consumer.processMessage(context.Background(), encodedEvent(t, ParticipantEventSignedUp, "a@mergington.edu", 1))
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestProcessMessage_SkipsPoisonMessage(t *testing.T) {
	consumer := newTestConsumer(EventHandlerFunc(func(context.Context, *ParticipantEvent) error {
		t.Error("handler must not see undecodable messages")
		return nil
	}))

	assert.NoError(t, consumer.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{not json")}))
}

func TestConsumeClaim_MarksOnlyHandledMessages(t *testing.T) {
	consumer := newTestConsumer(EventHandlerFunc(func(_ context.Context, event *ParticipantEvent) error {
		if event.Email == "broken@mergington.edu" {
			return errors.New("rejected")
		}
		return nil
	}))

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- encodedEvent(t, ParticipantEventSignedUp, "ok@mergington.edu", 10)
	claim.messages <- encodedEvent(t, ParticipantEventSignedUp, "broken@mergington.edu", 11)
	claim.messages <- encodedEvent(t, ParticipantEventUnregistered, "ok@mergington.edu", 12)
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	handler := &consumerGroupHandler{consumer: consumer}

	require.NoError(t, handler.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{10, 12}, session.marked)
}

func TestAuditHandler_LogsEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := NewAuditHandler(logger.NewWithWriter(&buf, "info"))

	event := NewParticipantEvent(ParticipantEventSignedUp, "Art Club", "new@mergington.edu")
	require.NoError(t, handler.HandleParticipantEvent(context.Background(), event))

	assert.Contains(t, buf.String(), "Roster change")
	assert.Contains(t, buf.String(), "Art Club")
	assert.Contains(t, buf.String(), event.ID.String())
}
