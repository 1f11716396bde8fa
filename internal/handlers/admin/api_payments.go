package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/models"
	"github.com/s/learnhub/internal/payment"
)

// HandlePaymentsAPI lists payments, optionally filtered with ?status=.
func (s *Service) HandlePaymentsAPI(w http.ResponseWriter, r *http.Request) {
	status := models.PaymentStatus(strings.ToLower(r.URL.Query().Get("status")))
	switch status {
	case "", models.PaymentPending, models.PaymentApproved, models.PaymentRejected:
	case "all":
		status = ""
	default:
		handlers.JSONError(w, "status must be pending, approved or rejected", http.StatusBadRequest)
		return
	}

	list(s, w, r, func(ctx context.Context, c *api.Client) ([]models.Payment, error) {
		return c.ListPayments(ctx, status)
	})
}

type reviewInput struct {
	Status models.PaymentStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// HandlePaymentByIDAPI shows a payment or records the review decision.
// Only pending payments can be approved or rejected.
func (s *Service) HandlePaymentByIDAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		get(s, w, r, (*api.Client).GetPayment)
	case http.MethodPut:
		s.reviewPayment(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Service) reviewPayment(w http.ResponseWriter, r *http.Request) {
	var in reviewInput
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.Status = models.PaymentStatus(strings.ToLower(string(in.Status)))
	if err := s.Validate.Struct(in); err != nil {
		s.Fail(w, r, err)
		return
	}

	id := pathID(r)
	p, err := payment.Review(r.Context(), s.Backend(r), id, in.Status)
	if err != nil {
		s.Fail(w, r, err)
		return
	}

	sess, _ := s.CurrentSession(r)
	s.Record(r.Context(), sess.UserID(), models.ActionPaymentReviewed, map[string]interface{}{
		"payment_id": id,
		"status":     in.Status,
		"buyer_id":   p.UserID,
	})
	handlers.WriteJSON(w, http.StatusOK, p)
}
