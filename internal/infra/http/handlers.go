package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

// Webhook payloads above this size are dropped before verification.
const maxWebhookBody = 1 << 20

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type checkoutResponse struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// A valid customer token attributes the order; absence means guest
	// checkout.
	var userID *string
	if claims, err := s.auth.ParseFromRequest(r); err == nil && claims.Subject != "" {
		sub := claims.Subject
		userID = &sub
	}

	res, err := s.checkoutUC.CreateSession(r.Context(), req.PlanID, req.Email, req.Name, userID)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "plan_id and a valid email are required", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error().Err(err).Msg("checkout session failed")
		http.Error(w, "Failed to create checkout session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		OrderID:     res.OrderID,
		SessionID:   res.SessionID,
		CheckoutURL: res.CheckoutURL,
	})
}

func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil || len(body) > maxWebhookBody {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	err = s.webhookUC.Process(r.Context(), body, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, domain.ErrSignature):
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	case err != nil:
		// Non-2xx makes the provider redeliver; the ledger entry already
		// carries the failure.
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type planResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	Region       string `json:"region,omitempty"`
	DataAmount   string `json:"data_amount"`
	ValidityDays int    `json:"validity_days"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	Description  string `json:"description,omitempty"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	filter := repository.PlanFilter{
		Country: r.URL.Query().Get("country"),
		Region:  r.URL.Query().Get("region"),
	}
	plans, err := s.planUC.ListActive(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("plan listing failed")
		http.Error(w, "Failed to list plans", http.StatusInternalServerError)
		return
	}

	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, planResponse{
			ID:           p.ID,
			Name:         p.Name,
			Country:      p.Country,
			Region:       p.Region,
			DataAmount:   p.DataAmount,
			ValidityDays: p.ValidityDays,
			PriceCents:   p.PriceCents,
			Currency:     p.Currency,
			Description:  p.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PlanID        string         `json:"plan_id"`
	AmountCents   int64          `json:"amount_cents"`
	Currency      string         `json:"currency"`
	CustomerEmail string         `json:"customer_email"`
	CreatedAt     time.Time      `json:"created_at"`
	Payment       *paymentDigest `json:"payment,omitempty"`
	Esim          *esimDigest    `json:"esim,omitempty"`
}

type paymentDigest struct {
	Status          string `json:"status"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type esimDigest struct {
	Status         string `json:"status"`
	QRCodeData     string `json:"qr_code_data"`
	SMDPAddress    string `json:"smdp_address"`
	ActivationCode string `json:"activation_code"`
	ICCID          string `json:"iccid"`
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := s.auth.ParseFromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := s.orderUC.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error().Err(err).Msg("order lookup failed")
		http.Error(w, "Failed to load order", http.StatusInternalServerError)
		return
	}

	if !canReadOrder(claims, detail.Order) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	resp := orderResponse{
		ID:            detail.Order.ID,
		Status:        string(detail.Order.Status),
		PlanID:        detail.Order.PlanID,
		AmountCents:   detail.Order.AmountCents,
		Currency:      detail.Order.Currency,
		CustomerEmail: detail.Order.CustomerEmail,
		CreatedAt:     detail.Order.CreatedAt,
	}
	if detail.Payment != nil {
		resp.Payment = &paymentDigest{
			Status:          string(detail.Payment.Status),
			PaymentIntentID: detail.Payment.PaymentIntentID,
		}
	}
	if detail.Esim != nil {
		resp.Esim = &esimDigest{
			Status:         string(detail.Esim.Status),
			QRCodeData:     detail.Esim.QRCodeData,
			SMDPAddress:    detail.Esim.SMDPAddress,
			ActivationCode: detail.Esim.ActivationCode,
			ICCID:          detail.Esim.ICCID,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// canReadOrder grants the service role everything; customers see their
// own orders, and guest orders are matched by the email claim.
func canReadOrder(claims *Claims, order *model.Order) bool {
	if claims.Role == ServiceRole {
		return true
	}
	if order.UserID != nil {
		return claims.Subject != "" && claims.Subject == *order.UserID
	}
	return claims.Email != "" && claims.Email == order.CustomerEmail
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
