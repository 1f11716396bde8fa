package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/s/learnhub/internal/models"
)

type PaymentInput struct {
	UserID         models.ID       `json:"user_id"`
	ItemID         models.ID       `json:"item_id"`
	ItemType       models.ItemType `json:"item_type"`
	Amount         float64         `json:"amount"`
	TransactionRef string          `json:"transaction_id"`
}

func (c *Client) CreatePayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	return sendObject[models.Payment](ctx, c, http.MethodPost, "payments", in, "payment")
}

// MyPayments lists the payments of the session user.
func (c *Client) MyPayments(ctx context.Context) ([]models.Payment, error) {
	return getList[models.Payment](ctx, c, "payments/user", nil, "payments")
}

// ListPayments lists every payment, optionally filtered by status. Admin only.
func (c *Client) ListPayments(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {string(status)}}
	}
	return getList[models.Payment](ctx, c, "payments", query, "payments")
}

func (c *Client) GetPayment(ctx context.Context, id models.ID) (*models.Payment, error) {
	return getObject[models.Payment](ctx, c, idPath("payments", id), "payment")
}

// UpdatePaymentStatus records an admin decision on a payment.
func (c *Client) UpdatePaymentStatus(ctx context.Context, id models.ID, status models.PaymentStatus) (*models.Payment, error) {
	in := map[string]models.PaymentStatus{"status": status}
	return sendObject[models.Payment](ctx, c, http.MethodPut, idPath("payments", id), in, "payment")
}
