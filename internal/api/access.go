package api

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/s/learnhub/internal/models"
)

// accessPayload covers every access-check shape seen from the backend:
// a bare status, a nested payment, or plain booleans.
type accessPayload struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Access        *bool  `json:"access"`
	HasAccess     *bool  `json:"hasAccess"`
	Pending       *bool  `json:"pending"`
}

func (p accessPayload) status() models.PaymentStatus {
	for _, s := range []string{p.PaymentStatus, p.Status} {
		switch st := models.PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
		case models.PaymentPending, models.PaymentApproved, models.PaymentRejected:
			return st
		}
	}
	switch {
	case p.Access != nil && *p.Access, p.HasAccess != nil && *p.HasAccess:
		return models.PaymentApproved
	case p.Pending != nil && *p.Pending:
		return models.PaymentPending
	}
	return ""
}

// AccessStatus asks the item's access endpoint for the status of the
// session user's latest payment. An empty status means no payment.
func (c *Client) AccessStatus(ctx context.Context, itemType models.ItemType, itemID models.ID) (models.PaymentStatus, error) {
	prefix := "subcategories"
	if itemType == models.ItemPDF {
		prefix = "pdfs"
	}
	path := idPath(prefix, itemID, "access")
	data, err := c.get(ctx, path, nil)
	if err != nil {
		return "", err
	}
	var payload accessPayload
	if err := DecodeObject(data, &payload, "payment", "access"); err != nil {
		return "", errors.Wrapf(err, "GET %s", path)
	}
	return payload.status(), nil
}
