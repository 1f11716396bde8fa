package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/progress"
)

var (
	pgOnce      sync.Once
	pgDSN       string
	pgErr       error
	pgContainer tc.Container
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func startPostgres(ctx context.Context) (string, error) {
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "learnhub",
				"POSTGRES_PASSWORD": "learnhub",
				"POSTGRES_DB":       "learnhub_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", err
	}
	pgContainer = c

	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("host=%s port=%s user=learnhub password=learnhub dbname=learnhub_test sslmode=disable", host, port.Port()), nil
}

// testDB connects to TEST_DATABASE_URL, or to a postgres container started
// once for the package. Without either, and in -short mode, the test skips.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		if testing.Short() {
			t.Skip("postgres tests skipped in short mode")
		}
		tc.SkipIfProviderIsNotHealthy(t)
		pgOnce.Do(func() { pgDSN, pgErr = startPostgres(context.Background()) })
		require.NoError(t, pgErr)
		dsn = pgDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VideoCompletion{}, &models.UserLog{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM video_completions WHERE user_id LIKE 'test-%'")
		db.Exec("DELETE FROM user_logs WHERE user_id LIKE 'test-%'")
	})
	return db
}

func TestCompletionJournal(t *testing.T) {
	ctx := context.Background()
	j := NewCompletionJournal(testDB(t))
	key := progress.Key{UserID: "test-u1", SubcategoryID: "c1", VideoID: "v1"}

	got, err := j.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, j.Record(ctx, key, models.CompletionOptimistic, ""))
	require.NoError(t, j.Record(ctx, key, models.CompletionRolledBack, "boom"))
	require.NoError(t, j.Record(ctx, key, models.CompletionConfirmed, ""))

	got, err = j.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.CompletionConfirmed, got.State)
	assert.Empty(t, got.Error)

	list, err := j.List(ctx, "test-u1", "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCompletionJournalConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	j := NewCompletionJournal(testDB(t))
	key := progress.Key{UserID: "test-u2", SubcategoryID: "c1", VideoID: "v1"}

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		state := models.CompletionOptimistic
		if i%2 == 1 {
			state = models.CompletionConfirmed
		}
		g.Go(func() error { return j.Record(ctx, key, state, "") })
	}
	require.NoError(t, g.Wait())

	list, err := j.List(ctx, "test-u2", "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCompletionJournalRollbackKeepsConfirmed(t *testing.T) {
	ctx := context.Background()
	j := NewCompletionJournal(testDB(t))
	key := progress.Key{UserID: "test-u3", SubcategoryID: "c1", VideoID: "v1"}

	require.NoError(t, j.Record(ctx, key, models.CompletionOptimistic, ""))
	ok, err := j.Rollback(ctx, key, "boom")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, j.Record(ctx, key, models.CompletionConfirmed, ""))
	ok, err = j.Rollback(ctx, key, "late failure")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := j.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.CompletionConfirmed, got.State)
}

type failingRemote struct{ err error }

func (f failingRemote) CompleteVideo(context.Context, models.ID) error { return f.err }

func (f failingRemote) CourseProgress(context.Context, models.ID) ([]models.ID, error) {
	return nil, nil
}

func TestTrackerOverCompletionJournal(t *testing.T) {
	ctx := context.Background()
	tr := progress.NewTracker(NewCompletionJournal(testDB(t)))
	boom := errors.New("backend down")

	err := tr.MarkCompleted(ctx, failingRemote{err: boom}, "test-u4", "c1", "v1")
	require.ErrorIs(t, err, boom)
	set, err := tr.Completed(ctx, failingRemote{}, "test-u4", "c1")
	require.NoError(t, err)
	assert.False(t, set.Has("v1"))

	require.NoError(t, tr.MarkCompleted(ctx, failingRemote{}, "test-u4", "c1", "v1"))
	set, err = tr.Completed(ctx, failingRemote{}, "test-u4", "c1")
	require.NoError(t, err)
	assert.True(t, set.Has("v1"))
}

func TestDBActivityLog(t *testing.T) {
	ctx := context.Background()
	l := NewDBActivityLog(testDB(t))
	require.NoError(t, l.Record(ctx, "test-u1", models.ActionLogin, map[string]string{"ip": "127.0.0.1"}))
	require.NoError(t, l.Record(ctx, "test-u1", models.ActionLogout, nil))

	page, total, err := l.List(ctx, ActivityQuery{UserID: "test-u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 2)
	assert.Equal(t, models.ActionLogout, page[0].Action)
}
