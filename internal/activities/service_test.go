package activities

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"mergington/internal/notifications"
	"mergington/pkg/logger"
	"mergington/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.ParticipantEvent
	err    error
}

func (p *recordingPublisher) PublishParticipantEvent(ctx context.Context, event *notifications.ParticipantEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(opts ...ServiceOption) (Service, Repository) {
	repo := NewMemoryRepository(SeedActivities())
	opts = append([]ServiceOption{WithLogger(logger.Discard())}, opts...)
	return NewService(repo, opts...), repo
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newTestService(WithPublisher(publisher))

	resp, err := svc.Signup(ctx, "Chess Club", "newstudent@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Signed up newstudent@mergington.edu for Chess Club", resp.Message)

	catalog, err := svc.ListActivities(ctx)
	require.NoError(t, err)
	chess, ok := catalog.Find("Chess Club")
	require.True(t, ok)
	assert.Contains(t, chess.Participants, "newstudent@mergington.edu")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, notifications.ParticipantEventSignedUp, publisher.events[0].Type)
	assert.Equal(t, "Chess Club", publisher.events[0].Activity)
	assert.Equal(t, "newstudent@mergington.edu", publisher.events[0].Email)
}

func TestService_SignupFailuresPublishNothing(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newTestService(WithPublisher(publisher))

	_, err := svc.Signup(ctx, "Chess Club", "michael@mergington.edu")
	assert.ErrorIs(t, err, ErrAlreadySignedUp)

	_, err = svc.Signup(ctx, "NonexistentClub", "student@mergington.edu")
	assert.ErrorIs(t, err, ErrActivityNotFound)

	_, err = svc.Unregister(ctx, "Chess Club", "notregistered@mergington.edu")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	assert.Empty(t, publisher.events)
}

func TestService_Unregister(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, repo := newTestService(WithPublisher(publisher))

	_, err := svc.Signup(ctx, "Chess Club", "testunregister@mergington.edu")
	require.NoError(t, err)

	resp, err := svc.Unregister(ctx, "Chess Club", "testunregister@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Unregistered testunregister@mergington.edu from Chess Club", resp.Message)

	chess, err := repo.Get(ctx, "Chess Club")
	require.NoError(t, err)
	assert.NotContains(t, chess.Participants, "testunregister@mergington.edu")

	require.Len(t, publisher.events, 2)
	assert.Equal(t, notifications.ParticipantEventUnregistered, publisher.events[1].Type)
}

func TestService_PublishErrorDoesNotFailSignup(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker unavailable")}
	svc, repo := newTestService(WithPublisher(publisher))

	_, err := svc.Signup(context.Background(), "Art Club", "painter@mergington.edu")
	require.NoError(t, err)

	art, err := repo.Get(context.Background(), "Art Club")
	require.NoError(t, err)
	assert.Contains(t, art.Participants, "painter@mergington.edu")
}

func TestService_CapacityEnforcement(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository([]Activity{{Name: "Tiny Club", MaxParticipants: 1}})

	enforcing := NewService(repo, WithLogger(logger.Discard()), WithCapacityEnforcement(true))
	_, err := enforcing.Signup(ctx, "Tiny Club", "first@mergington.edu")
	require.NoError(t, err)
	_, err = enforcing.Signup(ctx, "Tiny Club", "second@mergington.edu")
	assert.ErrorIs(t, err, ErrActivityFull)

	lenient := NewService(repo, WithLogger(logger.Discard()))
	_, err = lenient.Signup(ctx, "Tiny Club", "second@mergington.edu")
	assert.NoError(t, err)
}

func TestService_RecordsRosterOutcomes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	duplicate := metrics.RosterOperations.WithLabelValues("signup", "already_signed_up")
	missing := metrics.RosterOperations.WithLabelValues("unregister", "participant_not_found")
	dupBefore, missBefore := testutil.ToFloat64(duplicate), testutil.ToFloat64(missing)

	_, err := svc.Signup(ctx, "Chess Club", "michael@mergington.edu")
	require.ErrorIs(t, err, ErrAlreadySignedUp)
	_, err = svc.Unregister(ctx, "Chess Club", "nobody@mergington.edu")
	require.ErrorIs(t, err, ErrParticipantNotFound)

	assert.Equal(t, dupBefore+1, testutil.ToFloat64(duplicate))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(missing))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "activity_not_found", outcome(ErrActivityNotFound))
	assert.Equal(t, "full", outcome(fmt.Errorf("wrapped: %w", ErrActivityFull)))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
