package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/s/learnhub/internal/access"
	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/validation"
)

var (
	ErrAlreadyPending    = errors.New("a payment for this item is already awaiting review")
	ErrAlreadyOwned      = errors.New("you already have access to this item")
	ErrInvalidTransition = access.ErrInvalidTransition
	ErrStateUnknown      = errors.New("we could not check whether this item is already paid for, please try again")
)

// Request is a user's claim that they paid for an item by manual transfer.
type Request struct {
	UserID         models.ID       `json:"user_id" validate:"required"`
	ItemID         models.ID       `json:"item_id" validate:"required"`
	ItemType       models.ItemType `json:"item_type" validate:"required,itemtype"`
	Amount         float64         `json:"amount" validate:"gt=0"`
	TransactionRef string          `json:"transaction_id" validate:"required,txref"`
}

// Backend is the part of the API client a submission needs.
type Backend interface {
	access.Backend
	CreatePayment(ctx context.Context, in api.PaymentInput) (*models.Payment, error)
}

// Receipt is the state the buyer sees right after a successful submission.
type Receipt struct {
	PaymentID models.ID    `json:"payment_id"`
	Access    bool         `json:"access"`
	Pending   bool         `json:"pending"`
	State     access.State `json:"state"`
}

type Submitter struct {
	validate     *validation.Validator
	accessSource string
}

func NewSubmitter(v *validation.Validator, accessSource string) *Submitter {
	return &Submitter{validate: v, accessSource: accessSource}
}

// Validate checks req without touching the network.
func (s *Submitter) Validate(req Request) error {
	return s.validate.Struct(req)
}

// Submit validates req, refuses a duplicate the current state forbids, and
// creates the payment. When the current state cannot be read nothing is
// created and the error matches ErrStateUnknown as well as the cause.
func (s *Submitter) Submit(ctx context.Context, b Backend, req Request) (Receipt, error) {
	req.TransactionRef = strings.TrimSpace(req.TransactionRef)
	if err := s.Validate(req); err != nil {
		return Receipt{}, err
	}

	res, err := access.NewResolver(access.NewSource(s.accessSource, b)).Resolve(ctx, req.UserID, req.ItemID, req.ItemType)
	if err != nil {
		return Receipt{}, errors.Join(ErrStateUnknown, err)
	}
	if _, terr := res.State.Next(access.EventSubmit); terr != nil {
		if res.State == access.Approved {
			return Receipt{}, ErrAlreadyOwned
		}
		return Receipt{}, ErrAlreadyPending
	}

	p, err := b.CreatePayment(ctx, api.PaymentInput{
		UserID:         req.UserID,
		ItemID:         req.ItemID,
		ItemType:       req.ItemType,
		Amount:         req.Amount,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{PaymentID: p.ID, Access: false, Pending: true, State: access.Pending}, nil
}
