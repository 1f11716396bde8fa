package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/s/learnhub/internal/models"
)

// State is the purchase state of one (user, item) pair.
type State string

const (
	NoPayment State = "NO_PAYMENT"
	Pending   State = "PENDING"
	Approved  State = "APPROVED"
	Rejected  State = "REJECTED"
)

// StateOf maps the status of the most recent payment to a purchase state.
// An empty or unknown status means there is no payment to speak of.
func StateOf(status models.PaymentStatus) State {
	switch models.PaymentStatus(strings.ToLower(string(status))) {
	case models.PaymentPending:
		return Pending
	case models.PaymentApproved:
		return Approved
	case models.PaymentRejected:
		return Rejected
	}
	return NoPayment
}

// Result is what the views need to know about an item.
type Result struct {
	Access  bool  `json:"access"`
	Pending bool  `json:"pending"`
	State   State `json:"state"`
}

func resultOf(st State) Result {
	return Result{Access: st == Approved, Pending: st == Pending, State: st}
}

// Source reports the status of the most recent payment a user made for an
// item. An empty status means none exists.
type Source interface {
	Status(ctx context.Context, userID, itemID models.ID, itemType models.ItemType) (models.PaymentStatus, error)
}

// Resolver decides whether a user may consume an item. It never writes.
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the access result for (userID, itemID). Without a user the
// answer is "no access" and the backend is not asked. Any failure also
// answers "no access"; the error is returned so callers can log or surface it.
func (r *Resolver) Resolve(ctx context.Context, userID, itemID models.ID, itemType models.ItemType) (Result, error) {
	if userID.IsZero() {
		return resultOf(NoPayment), nil
	}
	if itemID.IsZero() || !itemType.Valid() {
		return resultOf(NoPayment), fmt.Errorf("access: invalid item %q of type %q", itemID, itemType)
	}

	status, err := r.src.Status(ctx, userID, itemID, itemType)
	if err != nil {
		return resultOf(NoPayment), fmt.Errorf("access: resolve %s %s: %w", itemType, itemID, err)
	}
	return resultOf(StateOf(status)), nil
}
