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

var _ repository.WebhookEventRepository = (*webhookEventRepo)(nil)

type webhookEventRepo struct{ pool *pgxpool.Pool }

func NewWebhookEventRepo(pool *pgxpool.Pool) *webhookEventRepo {
	return &webhookEventRepo{pool: pool}
}

const webhookEventColumns = `id, provider_event_id, event_type, payload, status, error_message, received_at, processed_at`

// Admit inserts the ledger entry before any business side effect runs.
// The unique constraint on provider_event_id turns a redelivery into a
// lookup of the entry the first delivery created, so closure always
// correlates to the exact delivery, never to "latest of this type".
func (r *webhookEventRepo) Admit(ctx context.Context, tx repository.Tx, e *model.WebhookEvent) (*model.WebhookEvent, error) {
	const q = `
INSERT INTO webhook_events (id, provider_event_id, event_type, payload, status, error_message, received_at, processed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (provider_event_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.ProviderEventID, e.EventType, e.Payload, e.Status, e.ErrorMessage, e.ReceivedAt, e.ProcessedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 1 {
		return e, nil
	}
	// Redelivery: hand back the entry admitted by the first delivery.
	return r.FindByProviderEventID(ctx, tx, e.ProviderEventID)
}

func (r *webhookEventRepo) FindByProviderEventID(ctx context.Context, tx repository.Tx, providerEventID string) (*model.WebhookEvent, error) {
	q := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE provider_event_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, providerEventID)
	if err != nil {
		return nil, err
	}
	return scanWebhookEvent(row)
}

func (r *webhookEventRepo) Close(ctx context.Context, tx repository.Tx, id string, status model.WebhookEventStatus, errMsg *string) error {
	const q = `
UPDATE webhook_events SET status=$2, error_message=$3, processed_at=NOW()
 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, errMsg)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanWebhookEvent(row pgx.Row) (*model.WebhookEvent, error) {
	e := &model.WebhookEvent{}
	err := row.Scan(&e.ID, &e.ProviderEventID, &e.EventType, &e.Payload, &e.Status, &e.ErrorMessage, &e.ReceivedAt, &e.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
