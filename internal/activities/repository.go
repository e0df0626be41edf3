package activities

import (
	"context"
	"sync"
)

type Repository interface {
	// Read operations
	List(ctx context.Context) (Catalog, error)
	Get(ctx context.Context, name string) (*Activity, error)

	// Roster mutations
	AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) error
	RemoveParticipant(ctx context.Context, name, email string) error

	// Reset replaces the whole registry with seed
	Reset(ctx context.Context, seed []Activity) error
}

// memoryRepository keeps the registry in process. One RWMutex serializes
// every roster mutation.
type memoryRepository struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*Activity
}

func NewMemoryRepository(seed []Activity) Repository {
	r := &memoryRepository{}
	r.load(seed)
	return r
}

func (r *memoryRepository) load(seed []Activity) {
	r.order = make([]string, 0, len(seed))
	r.activities = make(map[string]*Activity, len(seed))
	for _, a := range seed {
		if _, dup := r.activities[a.Name]; dup {
			continue
		}
		clone := a.Clone()
		r.order = append(r.order, a.Name)
		r.activities[a.Name] = &clone
	}
}

func (r *memoryRepository) List(ctx context.Context) (Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make(Catalog, 0, len(r.order))
	for _, name := range r.order {
		catalog = append(catalog, r.activities[name].Clone())
	}
	return catalog, nil
}

func (r *memoryRepository) Get(ctx context.Context, name string) (*Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return nil, ErrActivityNotFound
	}
	clone := activity.Clone()
	return &clone, nil
}

func (r *memoryRepository) AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return ErrActivityNotFound
	}
	if activity.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if enforceCapacity && activity.IsFull() {
		return ErrActivityFull
	}

	activity.Participants = append(activity.Participants, email)
	return nil
}

func (r *memoryRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return ErrActivityNotFound
	}

	idx := indexOf(activity.Participants, email)
	if idx < 0 {
		return ErrParticipantNotFound
	}

	activity.Participants = append(activity.Participants[:idx], activity.Participants[idx+1:]...)
	return nil
}

func (r *memoryRepository) Reset(ctx context.Context, seed []Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.load(seed)
	return nil
}
