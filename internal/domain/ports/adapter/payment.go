package adapter

import (
	"context"
)

// CheckoutSessionInput carries what the gateway needs to open a hosted
// checkout for one plan purchase.
type CheckoutSessionInput struct {
	OrderReference string // our order id, round-tripped via provider metadata
	PlanID         string
	PlanName       string
	AmountCents    int64
	Currency       string
	CustomerEmail  string
}

// CheckoutSession is the provider-side session the buyer is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified provider webhook delivery, decoupled from any
// provider SDK type so the webhook use case stays testable in isolation.
type Event struct {
	ID      string // provider's unique event id
	Type    string // e.g. "checkout.session.completed"
	Payload []byte // full raw event JSON, stored in the ledger
	Object  []byte // raw JSON of the event's data object
}

// PaymentGateway is the hex port for the hosted payment provider.
type PaymentGateway interface {
	Name() string

	// CreateCheckoutSession opens a hosted checkout session for the order.
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)

	// VerifyWebhook authenticates a raw delivery against the shared secret
	// (signature plus timestamp tolerance) and returns the decoded event.
	// Returns domain.ErrSignature on any authentication failure.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
