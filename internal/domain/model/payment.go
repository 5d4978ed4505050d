package model

import (
	"time"

	"esim-storefront/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing" // checkout completed, awaiting settlement
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCanceled   PaymentStatus = "canceled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusFailed, PaymentStatusCanceled},
	PaymentStatusProcessing: {PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled},
	PaymentStatusSucceeded:  {PaymentStatusRefunded},
	PaymentStatusFailed:     {},
	PaymentStatusCanceled:   {},
	PaymentStatusRefunded:   {},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// Payment records the provider-side payment attempt for an order.
// At most one payment exists per order; amount and currency are copied
// from the order at creation and never change afterwards.
type Payment struct {
	ID                 string
	OrderID            string
	PaymentIntentID    string // provider payment id, unique
	AmountCents        int64
	Currency           string
	Status             PaymentStatus
	ProviderCustomerID string
	PaymentMethod      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPayment constructs a payment attempt linked to an order. The order
// must have reached processing before a payment may exist; the stores
// enforce that with the unique order_id constraint plus the order CAS.
func NewPayment(id string, order *Order, intentID, customerID string) (*Payment, error) {
	if id == "" || order == nil || order.ID == "" || intentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Payment{
		ID:                 id,
		OrderID:            order.ID,
		PaymentIntentID:    intentID,
		AmountCents:        order.AmountCents,
		Currency:           order.Currency,
		Status:             PaymentStatusProcessing,
		ProviderCustomerID: customerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}
