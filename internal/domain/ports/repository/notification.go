package repository

import (
	"context"
	"time"

	"esim-storefront/internal/domain/model"
)

// NotificationRepository is the transactional outbox for emails.
type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Notification, error)
	ListByOrderID(ctx context.Context, tx Tx, orderID string) ([]*model.Notification, error)
	// ClaimPending locks up to limit rows that are due for dispatch
	// (pending, or failed with next_retry_at in the past) so concurrent
	// dispatchers never double-send.
	ClaimPending(ctx context.Context, tx Tx, limit int) ([]*model.Notification, error)
	// CountPending reports the current outbox backlog for metrics.
	CountPending(ctx context.Context, tx Tx) (int, error)
	MarkSent(ctx context.Context, tx Tx, id string) error
	MarkFailed(ctx context.Context, tx Tx, id string, attempts int, nextRetryAt time.Time, lastError string) error
}
