// File: internal/infra/adapters/payment/stripe_gateway.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements adapter.PaymentGateway on hosted Checkout
// sessions. Webhook deliveries are authenticated with the endpoint's
// signing secret; webhook.ConstructEvent enforces the signature and the
// default timestamp tolerance window.
type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeGateway(secretKey, webhookSecret, successURL, cancelURL string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key empty")
	}
	if webhookSecret == "" {
		return nil, errors.New("stripe webhook secret empty")
	}
	stripe.Key = secretKey
	return &StripeGateway{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

// CreateCheckoutSession opens a one-item hosted checkout for the plan.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in adapter.CheckoutSessionInput) (*adapter.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(in.CustomerEmail),
		SuccessURL:    stripe.String(g.successURL),
		CancelURL:     stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(in.Currency)),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.PlanName),
						Description: stripe.String("eSIM Data Plan"),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", in.OrderReference)
	params.AddMetadata("plan_id", in.PlanID)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &adapter.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyWebhook authenticates the delivery against the signing secret.
// Any failure maps to domain.ErrSignature so the processor rejects at
// the boundary without touching the ledger.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*adapter.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignature, err)
	}
	return &adapter.Event{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
		Object:  event.Data.Raw,
	}, nil
}
