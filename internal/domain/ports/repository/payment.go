package repository

import (
	"context"

	"esim-storefront/internal/domain/model"
)

type PaymentRepository interface {
	// Save inserts a payment. The unique constraints on order_id and
	// payment_intent_id turn duplicate creation into domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, payment *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Payment, error)
	FindByPaymentIntentID(ctx context.Context, tx Tx, intentID string) (*model.Payment, error)
	// UpdateStatus is a conditional from -> to move; stale preconditions
	// surface as domain.ErrStaleTransition.
	UpdateStatus(ctx context.Context, tx Tx, id string, from, to model.PaymentStatus) error
}
