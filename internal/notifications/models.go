package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ParticipantEventType string

const (
	ParticipantEventSignedUp     ParticipantEventType = "PARTICIPANT_SIGNED_UP"
	ParticipantEventUnregistered ParticipantEventType = "PARTICIPANT_UNREGISTERED"
)

// ParticipantEvent is published after every successful roster change
type ParticipantEvent struct {
	ID         uuid.UUID            `json:"id"`
	Type       ParticipantEventType `json:"type"`
	Activity   string               `json:"activity"`
	Email      string               `json:"email"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func NewParticipantEvent(eventType ParticipantEventType, activity, email string) *ParticipantEvent {
	return &ParticipantEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Activity:   activity,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

// GetPartitionKey keeps every change to one activity on one partition, in order
func (e *ParticipantEvent) GetPartitionKey() string {
	return e.Activity
}

func (e *ParticipantEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
