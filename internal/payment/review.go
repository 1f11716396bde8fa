package payment

import (
	"context"
	"fmt"

	"github.com/s/learnhub/internal/access"
	"github.com/s/learnhub/internal/models"
)

// ReviewBackend is the admin side of the payments API.
type ReviewBackend interface {
	GetPayment(ctx context.Context, id models.ID) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id models.ID, status models.PaymentStatus) (*models.Payment, error)
}

// EventFor maps an admin decision to a state machine event.
func EventFor(decision models.PaymentStatus) (access.Event, error) {
	switch decision {
	case models.PaymentApproved:
		return access.EventApprove, nil
	case models.PaymentRejected:
		return access.EventReject, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidTransition, decision)
}

// Review applies an admin decision to a pending payment. Payments that are
// not pending are refused before the backend is asked to change them.
func Review(ctx context.Context, b ReviewBackend, id models.ID, decision models.PaymentStatus) (*models.Payment, error) {
	ev, err := EventFor(decision)
	if err != nil {
		return nil, err
	}
	p, err := b.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := access.StateOf(p.Status).Next(ev); err != nil {
		return nil, err
	}
	return b.UpdatePaymentStatus(ctx, id, decision)
}
