package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/learnhub/internal/models"
)

type fakeRemote struct {
	completed []models.ID
	calls     []models.ID
	err       error
}

func (f *fakeRemote) CompleteVideo(_ context.Context, id models.ID) error {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRemote) CourseProgress(context.Context, models.ID) ([]models.ID, error) {
	return f.completed, nil
}

func TestMarkCompletedIdempotent(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	tr := NewTracker(NewMemoryJournal())

	require.NoError(t, tr.MarkCompleted(ctx, remote, "u1", "c1", "A"))
	once, err := tr.Completed(ctx, remote, "u1", "c1")
	require.NoError(t, err)

	require.NoError(t, tr.MarkCompleted(ctx, remote, "u1", "c1", "A"))
	twice, err := tr.Completed(ctx, remote, "u1", "c1")
	require.NoError(t, err)

	assert.Equal(t, once.IDs(), twice.IDs())
	assert.Equal(t, []models.ID{"A"}, twice.IDs())
	assert.Equal(t, []models.ID{"A"}, remote.calls)
}

func TestMarkCompletedRollsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	remote := &fakeRemote{err: boom}
	journal := NewMemoryJournal()
	tr := NewTracker(journal)

	err := tr.MarkCompleted(ctx, remote, "u1", "c1", "A")
	require.ErrorIs(t, err, boom)

	entry, err := journal.Get(ctx, Key{UserID: "u1", SubcategoryID: "c1", VideoID: "A"})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.CompletionRolledBack, entry.State)
	assert.Equal(t, "backend down", entry.Error)

	set, err := tr.Completed(ctx, remote, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, set.Has("A"))

	remote.err = nil
	require.NoError(t, tr.MarkCompleted(ctx, remote, "u1", "c1", "A"))
	set, err = tr.Completed(ctx, remote, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, set.Has("A"))
}

// racingRemote fails its own call after a concurrent one for the same video
// has already been confirmed.
type racingRemote struct {
	fakeRemote
	journal Journal
	key     Key
}

func (r *racingRemote) CompleteVideo(ctx context.Context, id models.ID) error {
	if err := r.journal.Record(ctx, r.key, models.CompletionConfirmed, ""); err != nil {
		return err
	}
	return errors.New("connection reset")
}

func TestFailedCallKeepsConfirmedEntry(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()
	key := Key{UserID: "u1", SubcategoryID: "c1", VideoID: "A"}
	remote := &racingRemote{fakeRemote: fakeRemote{completed: []models.ID{}}, journal: journal, key: key}

	require.NoError(t, NewTracker(journal).MarkCompleted(ctx, remote, "u1", "c1", "A"))

	entry, err := journal.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.CompletionConfirmed, entry.State)

	set, err := NewTracker(journal).Completed(ctx, remote, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, set.Has("A"))
}

func TestMemoryJournalRollback(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()
	key := Key{UserID: "u1", SubcategoryID: "c1", VideoID: "A"}

	ok, err := journal.Rollback(ctx, key, "boom")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, journal.Record(ctx, key, models.CompletionOptimistic, ""))
	ok, err = journal.Rollback(ctx, key, "boom")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, journal.Record(ctx, key, models.CompletionConfirmed, ""))
	ok, err = journal.Rollback(ctx, key, "boom")
	require.NoError(t, err)
	assert.False(t, ok)
	entry, _ := journal.Get(ctx, key)
	assert.Equal(t, models.CompletionConfirmed, entry.State)
}

func TestCompletedMergesJournal(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()
	require.NoError(t, journal.Record(ctx, Key{UserID: "u1", SubcategoryID: "c1", VideoID: "B"}, models.CompletionOptimistic, ""))
	require.NoError(t, journal.Record(ctx, Key{UserID: "u1", SubcategoryID: "c2", VideoID: "X"}, models.CompletionConfirmed, ""))
	require.NoError(t, journal.Record(ctx, Key{UserID: "u2", SubcategoryID: "c1", VideoID: "Y"}, models.CompletionConfirmed, ""))

	set, err := NewTracker(journal).Completed(ctx, &fakeRemote{completed: []models.ID{"A"}}, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"A", "B"}, set.IDs())
}

func TestMarkCompletedRequiresKey(t *testing.T) {
	remote := &fakeRemote{}
	err := NewTracker(nil).MarkCompleted(context.Background(), remote, "", "c1", "A")
	assert.Error(t, err)
	assert.Empty(t, remote.calls)
}
