package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, plan_id, status, amount_cents, currency, checkout_session_id, payment_intent_id, customer_email, customer_name, created_at, updated_at`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (id, user_id, plan_id, status, amount_cents, currency, checkout_session_id, payment_intent_id, customer_email, customer_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.UserID, o.PlanID, o.Status, o.AmountCents, o.Currency, o.CheckoutSessionID, o.PaymentIntentID, o.CustomerEmail, o.CustomerName, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) FindByCheckoutSessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_session_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) FindByPaymentIntentID(ctx context.Context, tx repository.Tx, intentID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, intentID)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

// UpdateStatus moves from -> to only when the current status still equals
// from. A losing race or duplicate delivery matches zero rows and gets
// ErrStaleTransition; callers treat that as a no-op, not a failure.
func (r *orderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	const q = `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleTransition
	}
	return nil
}

// SetPaymentIntent performs pending -> processing and records the provider
// payment id in a single conditional update, so the intent id is only ever
// written by the delivery that wins the transition.
func (r *orderRepo) SetPaymentIntent(ctx context.Context, tx repository.Tx, id string, intentID string) error {
	const q = `
UPDATE orders SET status=$3, payment_intent_id=$4, updated_at=NOW()
 WHERE id=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, model.OrderStatusPending, model.OrderStatusProcessing, intentID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleTransition
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.PlanID, &o.Status, &o.AmountCents, &o.Currency, &o.CheckoutSessionID, &o.PaymentIntentID, &o.CustomerEmail, &o.CustomerName, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}
