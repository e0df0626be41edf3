package activities

import (
	"context"
	"errors"
	"fmt"

	"mergington/internal/notifications"
	"mergington/pkg/logger"
	"mergington/pkg/metrics"
)

type Service interface {
	ListActivities(ctx context.Context) (Catalog, error)
	Signup(ctx context.Context, activityName, email string) (*SignupResponse, error)
	Unregister(ctx context.Context, activityName, email string) (*UnregisterResponse, error)
}

type service struct {
	repo            Repository
	publisher       notifications.Publisher
	logger          *logger.Logger
	enforceCapacity bool
}

type ServiceOption func(*service)

// WithPublisher announces every successful roster change
func WithPublisher(p notifications.Publisher) ServiceOption {
	return func(s *service) { s.publisher = p }
}

func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *service) { s.logger = l }
}

// WithCapacityEnforcement rejects signups once max_participants is reached
func WithCapacityEnforcement(enabled bool) ServiceOption {
	return func(s *service) { s.enforceCapacity = enabled }
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListActivities(ctx context.Context) (Catalog, error) {
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return catalog, nil
}

func (s *service) Signup(ctx context.Context, activityName, email string) (*SignupResponse, error) {
	err := s.repo.AddParticipant(ctx, activityName, email, s.enforceCapacity)
	metrics.RecordRosterOperation("signup", outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.LogParticipantSignedUp(ctx, activityName, email)
	s.publish(ctx, notifications.NewParticipantEvent(notifications.ParticipantEventSignedUp, activityName, email))

	return &SignupResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, activityName),
	}, nil
}

func (s *service) Unregister(ctx context.Context, activityName, email string) (*UnregisterResponse, error) {
	err := s.repo.RemoveParticipant(ctx, activityName, email)
	metrics.RecordRosterOperation("unregister", outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.LogParticipantUnregistered(ctx, activityName, email)
	s.publish(ctx, notifications.NewParticipantEvent(notifications.ParticipantEventUnregistered, activityName, email))

	return &UnregisterResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, activityName),
	}, nil
}

// publish never fails the request; the roster change has already happened
func (s *service) publish(ctx context.Context, event *notifications.ParticipantEvent) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishParticipantEvent(ctx, event)
	metrics.RecordEventPublished(string(event.Type), err)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to publish participant event", err, map[string]interface{}{
			"type":     event.Type,
			"activity": event.Activity,
		})
	}
}

// outcome is the metrics label for a registry result
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrActivityNotFound):
		return "activity_not_found"
	case errors.Is(err, ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, ErrActivityFull):
		return "full"
	default:
		return "error"
	}
}
