package httpapi

import (
	"io"
	"net/http"
)

// maxWebhookBody bounds the webhook payload size accepted from the provider.
const maxWebhookBody = 1 << 20

type checkoutResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	url, err := s.payments.Checkout(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

// handlePaymentWebhook receives provider callbacks. The raw body is needed
// intact for signature verification, so it is read before any decoding.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable payload"})
		return
	}

	if err := s.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
