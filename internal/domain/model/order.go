package model

import (
	"time"

	"esim-storefront/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // checkout session created, awaiting provider events
	OrderStatusProcessing OrderStatus = "processing" // checkout completed, payment in flight
	OrderStatusCompleted  OrderStatus = "completed"  // payment succeeded, eSIM issued
	OrderStatusFailed     OrderStatus = "failed"     // payment failed
	OrderStatusRefunded   OrderStatus = "refunded"   // refunded by support tooling
)

// orderTransitions encodes the legal forward moves. Anything not listed
// is a stale or illegal transition and must be rejected by the stores.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusFailed},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusFailed},
	OrderStatusCompleted:  {OrderStatusRefunded},
	OrderStatusFailed:     {},
	OrderStatusRefunded:   {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Order is the single source of truth for what was purchased and by whom.
// Only Status and PaymentIntentID are mutable after creation, and only the
// webhook processor mutates them. Orders are never deleted.
type Order struct {
	ID                string
	UserID            *string // nil for guest checkout
	PlanID            string
	Status            OrderStatus
	AmountCents       int64
	Currency          string
	CheckoutSessionID string  // provider session id, set at creation
	PaymentIntentID   *string // provider payment id, set once payment begins
	CustomerEmail     string
	CustomerName      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder constructs a pending order for a checkout session.
func NewOrder(id string, userID *string, plan *Plan, sessionID, email, name string) (*Order, error) {
	if id == "" || plan.IsZero() || sessionID == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Order{
		ID:                id,
		UserID:            userID,
		PlanID:            plan.ID,
		Status:            OrderStatusPending,
		AmountCents:       plan.PriceCents,
		Currency:          plan.Currency,
		CheckoutSessionID: sessionID,
		CustomerEmail:     email,
		CustomerName:      name,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
