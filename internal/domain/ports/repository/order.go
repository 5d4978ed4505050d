package repository

import (
	"context"

	"esim-storefront/internal/domain/model"
)

// OrderRepository persists orders. UpdateStatus is the sole mutation path
// for Status: it moves from -> to only when the current status equals
// from, returning domain.ErrStaleTransition otherwise. That conditional
// write is the only concurrency guard the webhook processor relies on.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, order *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	FindByCheckoutSessionID(ctx context.Context, tx Tx, sessionID string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, tx Tx, intentID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, from, to model.OrderStatus) error
	// SetPaymentIntent performs the pending->processing transition and
	// records the provider payment id in one conditional update.
	SetPaymentIntent(ctx context.Context, tx Tx, id string, intentID string) error
}
