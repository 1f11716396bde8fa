package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/progress"
)

// CompletionJournal is the database-backed progress.Journal.
type CompletionJournal struct {
	db *gorm.DB
}

func NewCompletionJournal(db *gorm.DB) *CompletionJournal {
	return &CompletionJournal{db: db}
}

func keyOf(key progress.Key) models.VideoCompletion {
	return models.VideoCompletion{
		UserID:        key.UserID.String(),
		SubcategoryID: key.SubcategoryID.String(),
		VideoID:       key.VideoID.String(),
	}
}

func (j *CompletionJournal) Get(ctx context.Context, key progress.Key) (*models.VideoCompletion, error) {
	var e models.VideoCompletion
	err := j.db.WithContext(ctx).Where(keyOf(key)).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Record sets the state of the entry for key, creating it on first use. It is
// a single INSERT ... ON CONFLICT on the (user, subcategory, video) index, so
// concurrent calls for the same key never collide.
func (j *CompletionJournal) Record(ctx context.Context, key progress.Key, state models.CompletionState, errText string) error {
	now := time.Now()
	e := keyOf(key)
	e.State = state
	e.Error = errText
	e.CreatedAt = now
	e.UpdatedAt = now

	return j.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "subcategory_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "error", "updated_at"}),
		}).
		Create(&e).Error
}

func (j *CompletionJournal) Rollback(ctx context.Context, key progress.Key, errText string) (bool, error) {
	res := j.db.WithContext(ctx).
		Model(&models.VideoCompletion{}).
		Where(keyOf(key)).
		Where("state <> ?", models.CompletionConfirmed).
		Updates(map[string]interface{}{"state": models.CompletionRolledBack, "error": errText})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (j *CompletionJournal) List(ctx context.Context, userID, subcategoryID models.ID) ([]models.VideoCompletion, error) {
	var out []models.VideoCompletion
	err := j.db.WithContext(ctx).
		Where("user_id = ? AND subcategory_id = ?", userID.String(), subcategoryID.String()).
		Order("created_at").
		Find(&out).Error
	return out, err
}
