package models

import "time"

type ItemType string

const (
	ItemCourse ItemType = "course"
	ItemPDF    ItemType = "pdf"
)

func (t ItemType) Valid() bool { return t == ItemCourse || t == ItemPDF }

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// Payment is a user's claim of a manual transfer, reviewed by an admin.
type Payment struct {
	ID             ID            `json:"id"`
	UserID         ID            `json:"user_id"`
	ItemID         ID            `json:"item_id"`
	ItemType       ItemType      `json:"item_type"`
	Amount         Number        `json:"amount"`
	TransactionRef string        `json:"transaction_id"`
	Status         PaymentStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}
