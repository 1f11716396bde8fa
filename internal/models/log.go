package models

import (
	"time"

	"gorm.io/datatypes"
)

// Actions recorded in the activity log.
const (
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionPaymentSubmitted = "payment_submitted"
	ActionPaymentReviewed  = "payment_reviewed"
	ActionVideoCompleted   = "video_completed"
)

// UserLog keeps the history of user actions performed through this service.
type UserLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    string         `gorm:"index;size:64" json:"user_id"`
	Action    string         `gorm:"size:32;index" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
