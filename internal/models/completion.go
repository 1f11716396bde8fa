package models

import "time"

type CompletionState string

const (
	CompletionOptimistic CompletionState = "optimistic"
	CompletionConfirmed  CompletionState = "confirmed"
	CompletionRolledBack CompletionState = "rolled_back"
)

// VideoCompletion is the local journal entry of a "mark completed" action.
// It starts optimistic and settles as confirmed or rolled back once the
// backend answers.
type VideoCompletion struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID        string          `gorm:"size:64;uniqueIndex:idx_video_completion" json:"user_id"`
	SubcategoryID string          `gorm:"size:64;uniqueIndex:idx_video_completion" json:"subcategory_id"`
	VideoID       string          `gorm:"size:64;uniqueIndex:idx_video_completion" json:"video_id"`
	State         CompletionState `gorm:"size:16;index" json:"state"`
	Error         string          `json:"error,omitempty"`
}
