package handlers

import (
	"net/http"

	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/payment"
)

type submitPaymentInput struct {
	ItemID         models.ID `json:"item_id"`
	ItemType       string    `json:"item_type"`
	TransactionRef string    `json:"transaction_id"`
}

// HandleSubmitPayment records a manual transfer for review. The amount is
// always the item's current price; whatever the client sends is ignored.
func (h *Handler) HandleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.CurrentSession(r)
	var in submitPaymentInput
	if err := DecodeJSON(r, &in); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := payment.Request{
		UserID:         sess.UserID(),
		ItemID:         in.ItemID,
		ItemType:       queryItemType(in.ItemType),
		TransactionRef: in.TransactionRef,
	}
	if err := h.Validate.StructExcept(req, "Amount"); err != nil {
		h.Fail(w, r, err)
		return
	}

	client := h.Backend(r)
	switch req.ItemType {
	case models.ItemCourse:
		course, err := client.GetSubcategory(r.Context(), req.ItemID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		req.Amount = course.Price.Float()
	case models.ItemPDF:
		pdf, err := client.GetPDF(r.Context(), req.ItemID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		req.Amount = pdf.Price.Float()
	}

	receipt, err := h.Submitter.Submit(r.Context(), client, req)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Record(r.Context(), req.UserID, models.ActionPaymentSubmitted, map[string]interface{}{
		"payment_id": receipt.PaymentID,
		"item_id":    req.ItemID,
		"item_type":  req.ItemType,
		"amount":     req.Amount,
	})
	WriteJSON(w, http.StatusCreated, receipt)
}
