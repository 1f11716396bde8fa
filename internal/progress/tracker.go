package progress

import (
	"context"
	"fmt"

	"github.com/s/learnhub/internal/models"
)

// Remote is the backend side of progress tracking.
type Remote interface {
	CompleteVideo(ctx context.Context, videoID models.ID) error
	CourseProgress(ctx context.Context, subcategoryID models.ID) ([]models.ID, error)
}

// Tracker owns the single way a completion is recorded.
type Tracker struct {
	journal Journal
}

func NewTracker(journal Journal) *Tracker {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	return &Tracker{journal: journal}
}

// MarkCompleted records that the user finished videoID. Completions are only
// ever added; calling it again for a video the backend already confirmed is a
// no-op. On a backend failure the entry is rolled back and the error returned,
// unless another call confirmed the same video in the meantime.
func (t *Tracker) MarkCompleted(ctx context.Context, remote Remote, userID, subcategoryID, videoID models.ID) error {
	if userID.IsZero() || subcategoryID.IsZero() || videoID.IsZero() {
		return fmt.Errorf("progress: incomplete key user=%q course=%q video=%q", userID, subcategoryID, videoID)
	}
	key := Key{UserID: userID, SubcategoryID: subcategoryID, VideoID: videoID}

	prev, err := t.journal.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("progress: read journal: %w", err)
	}
	if prev != nil && prev.State == models.CompletionConfirmed {
		return nil
	}

	if err := t.journal.Record(ctx, key, models.CompletionOptimistic, ""); err != nil {
		return fmt.Errorf("progress: journal: %w", err)
	}
	if err := remote.CompleteVideo(ctx, videoID); err != nil {
		// The request context may already be gone; the rollback must still land.
		rolledBack, jerr := t.journal.Rollback(context.WithoutCancel(ctx), key, err.Error())
		if jerr != nil {
			return fmt.Errorf("progress: complete %s: %w (rollback: %v)", videoID, err, jerr)
		}
		if !rolledBack {
			// A concurrent call for the same video was confirmed meanwhile.
			return nil
		}
		return fmt.Errorf("progress: complete %s: %w", videoID, err)
	}
	if err := t.journal.Record(ctx, key, models.CompletionConfirmed, ""); err != nil {
		return fmt.Errorf("progress: journal: %w", err)
	}
	return nil
}

// Completed returns the effective completed set of a course: whatever the
// backend reports plus every local entry that was not rolled back.
func (t *Tracker) Completed(ctx context.Context, remote Remote, userID, subcategoryID models.ID) (CompletedSet, error) {
	ids, err := remote.CourseProgress(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	set := NewCompletedSet(ids...)

	entries, err := t.journal.List(ctx, userID, subcategoryID)
	if err != nil {
		return set, fmt.Errorf("progress: read journal: %w", err)
	}
	for _, e := range entries {
		if e.State != models.CompletionRolledBack {
			set.Add(models.ID(e.VideoID))
		}
	}
	return set, nil
}
