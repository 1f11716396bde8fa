package progress

import (
	"context"
	"sync"
	"time"

	"github.com/s/learnhub/internal/models"
)

// Key identifies one completion.
type Key struct {
	UserID        models.ID
	SubcategoryID models.ID
	VideoID       models.ID
}

// Journal records the local life of each completion: optimistic while the
// backend call is in flight, then confirmed or rolled back.
type Journal interface {
	Get(ctx context.Context, key Key) (*models.VideoCompletion, error)
	Record(ctx context.Context, key Key, state models.CompletionState, errText string) error
	List(ctx context.Context, userID, subcategoryID models.ID) ([]models.VideoCompletion, error)
	// Rollback marks the entry rolled back unless it is already confirmed,
	// and reports whether it did.
	Rollback(ctx context.Context, key Key, errText string) (bool, error)
}

// MemoryJournal keeps the journal in process memory.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[Key]models.VideoCompletion
	now     func() time.Time
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: map[Key]models.VideoCompletion{}, now: time.Now}
}

func (j *MemoryJournal) Get(_ context.Context, key Key) (*models.VideoCompletion, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (j *MemoryJournal) Record(_ context.Context, key Key, state models.CompletionState, errText string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	e, ok := j.entries[key]
	if !ok {
		e = models.VideoCompletion{
			CreatedAt:     now,
			UserID:        key.UserID.String(),
			SubcategoryID: key.SubcategoryID.String(),
			VideoID:       key.VideoID.String(),
		}
	}
	e.State = state
	e.Error = errText
	e.UpdatedAt = now
	j.entries[key] = e
	return nil
}

func (j *MemoryJournal) Rollback(_ context.Context, key Key, errText string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[key]
	if !ok || e.State == models.CompletionConfirmed {
		return false, nil
	}
	e.State = models.CompletionRolledBack
	e.Error = errText
	e.UpdatedAt = j.now()
	j.entries[key] = e
	return true, nil
}

func (j *MemoryJournal) List(_ context.Context, userID, subcategoryID models.ID) ([]models.VideoCompletion, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []models.VideoCompletion
	for k, e := range j.entries {
		if k.UserID == userID && k.SubcategoryID == subcategoryID {
			out = append(out, e)
		}
	}
	return out, nil
}
