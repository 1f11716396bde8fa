package access

import (
	"context"

	"github.com/s/learnhub/internal/config"
	"github.com/s/learnhub/internal/models"
)

// Backend is the part of the API client the sources use.
type Backend interface {
	MyPayments(ctx context.Context) ([]models.Payment, error)
	AccessStatus(ctx context.Context, itemType models.ItemType, itemID models.ID) (models.PaymentStatus, error)
}

// PaymentHistory derives the status from the user's own payment list.
type PaymentHistory struct {
	Backend Backend
}

func (s PaymentHistory) Status(ctx context.Context, userID, itemID models.ID, itemType models.ItemType) (models.PaymentStatus, error) {
	payments, err := s.Backend.MyPayments(ctx)
	if err != nil {
		return "", err
	}
	latest := Latest(payments, userID, itemID, itemType)
	if latest == nil {
		return "", nil
	}
	return latest.Status, nil
}

// Latest returns the most recent payment matching the item, or nil.
// Payments without a user id are taken to belong to userID, since the list
// is already scoped to the session user. Ties keep the later entry.
func Latest(payments []models.Payment, userID, itemID models.ID, itemType models.ItemType) *models.Payment {
	var latest *models.Payment
	for i := range payments {
		p := &payments[i]
		if p.ItemID != itemID {
			continue
		}
		if p.ItemType != "" && p.ItemType != itemType {
			continue
		}
		if !p.UserID.IsZero() && p.UserID != userID {
			continue
		}
		if latest == nil || !p.CreatedAt.Before(latest.CreatedAt) {
			latest = p
		}
	}
	return latest
}

// AccessEndpoint asks the backend's per-item access endpoint.
type AccessEndpoint struct {
	Backend Backend
}

func (s AccessEndpoint) Status(ctx context.Context, _, itemID models.ID, itemType models.ItemType) (models.PaymentStatus, error) {
	return s.Backend.AccessStatus(ctx, itemType, itemID)
}

// NewSource picks the status source named by the configuration.
func NewSource(mode string, b Backend) Source {
	if mode == config.AccessFromEndpoint {
		return AccessEndpoint{Backend: b}
	}
	return PaymentHistory{Backend: b}
}
