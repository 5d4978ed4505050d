package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

const notificationColumns = `id, order_id, kind, recipient, payload, status, attempts, next_retry_at, last_error, created_at, updated_at`

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, order_id, kind, recipient, payload, status, attempts, next_retry_at, last_error, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`

	_, err := execSQL(ctx, r.pool, tx, q,
		n.ID, n.OrderID, n.Kind, n.Recipient, n.Payload, n.Status, n.Attempts, n.NextRetryAt, n.LastError, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanNotification(row)
}

func (r *notificationRepo) ListByOrderID(ctx context.Context, tx repository.Tx, orderID string) ([]*model.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE order_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// ClaimPending locks due rows with FOR UPDATE SKIP LOCKED so concurrent
// dispatchers partition the backlog instead of double-sending. Call it
// inside a transaction and mark each row before committing.
func (r *notificationRepo) ClaimPending(ctx context.Context, tx repository.Tx, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT ` + notificationColumns + `
  FROM notifications
 WHERE status=$1 AND (next_retry_at IS NULL OR next_retry_at <= NOW())
 ORDER BY created_at ASC
 LIMIT $2
 FOR UPDATE SKIP LOCKED;`

	rows, err := queryRows(ctx, r.pool, tx, q, model.NotificationStatusPending, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) CountPending(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE status=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, model.NotificationStatusPending)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *notificationRepo) MarkSent(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE notifications SET status=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, model.NotificationStatusSent)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, attempts int, nextRetryAt time.Time, lastError string) error {
	// Status stays pending while retries remain; MarkFailed with a zero
	// nextRetryAt parks the row as failed permanently.
	status := model.NotificationStatusPending
	var retryAt *time.Time
	if nextRetryAt.IsZero() {
		status = model.NotificationStatusFailed
	} else {
		retryAt = &nextRetryAt
	}
	const q = `
UPDATE notifications SET status=$2, attempts=$3, next_retry_at=$4, last_error=$5, updated_at=NOW()
 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, attempts, retryAt, lastError)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func collectNotifications(rows pgx.Rows) ([]*model.Notification, error) {
	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	n := &model.Notification{}
	err := row.Scan(&n.ID, &n.OrderID, &n.Kind, &n.Recipient, &n.Payload, &n.Status, &n.Attempts, &n.NextRetryAt, &n.LastError, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return n, nil
}
