package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
	"esim-storefront/internal/domain/ports/repository"
	"esim-storefront/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// DispatchPending claims due outbox rows, renders and sends them, and
	// returns how many were sent and how many failed this pass. A send
	// failure schedules a retry with exponential backoff until the attempt
	// cap, then parks the row as failed.
	DispatchPending(ctx context.Context, batchSize int) (sent, failed int, err error)
}

type notificationUC struct {
	notifications repository.NotificationRepository
	txm           repository.TransactionManager
	renderer      adapter.MailRenderer
	mailer        adapter.Mailer
	maxAttempts   int
	log           *zerolog.Logger
}

func NewNotificationUseCase(
	notifications repository.NotificationRepository,
	txm repository.TransactionManager,
	renderer adapter.MailRenderer,
	mailer adapter.Mailer,
	maxAttempts int,
	logger *zerolog.Logger,
) *notificationUC {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &notificationUC{
		notifications: notifications,
		txm:           txm,
		renderer:      renderer,
		mailer:        mailer,
		maxAttempts:   maxAttempts,
		log:           logger,
	}
}

func (u *notificationUC) DispatchPending(ctx context.Context, batchSize int) (int, int, error) {
	if batchSize <= 0 {
		batchSize = 20
	}
	var sent, failed int
	// Claim and resolve inside one transaction so SKIP LOCKED keeps
	// concurrent dispatchers off the same rows.
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		rows, err := u.notifications.ClaimPending(ctx, tx, batchSize)
		if err != nil {
			return err
		}
		for _, n := range rows {
			if err := u.deliver(ctx, tx, n); err != nil {
				failed++
			} else {
				sent++
			}
		}
		return nil
	})
	if err != nil {
		return sent, failed, err
	}
	return sent, failed, nil
}

func (u *notificationUC) deliver(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	subject, body, err := u.renderer.Render(n.Kind, n.Payload)
	if err == nil {
		err = u.mailer.Send(ctx, n.Recipient, subject, body)
	}
	if err == nil {
		if markErr := u.notifications.MarkSent(ctx, tx, n.ID); markErr != nil {
			return markErr
		}
		metrics.IncNotification(string(n.Kind), "sent")
		u.log.Info().Str("order_id", n.OrderID).Str("kind", string(n.Kind)).Msg("notification sent")
		return nil
	}

	attempts := n.Attempts + 1
	if attempts >= u.maxAttempts {
		// Park permanently; support tooling resends by hand.
		if markErr := u.notifications.MarkFailed(ctx, tx, n.ID, attempts, time.Time{}, err.Error()); markErr != nil {
			return markErr
		}
		metrics.IncNotification(string(n.Kind), "failed")
		u.log.Error().Err(err).Str("order_id", n.OrderID).Str("kind", string(n.Kind)).Int("attempts", attempts).Msg("notification permanently failed")
		return err
	}

	retryAt := time.Now().Add(retryBackoff(attempts))
	if markErr := u.notifications.MarkFailed(ctx, tx, n.ID, attempts, retryAt, err.Error()); markErr != nil {
		return markErr
	}
	metrics.IncNotification(string(n.Kind), "retry")
	u.log.Warn().Err(err).Str("order_id", n.OrderID).Int("attempts", attempts).Time("retry_at", retryAt).Msg("notification send failed, retry scheduled")
	return err
}

// retryBackoff doubles per attempt starting at one second, capped at a
// minute.
func retryBackoff(attempts int) time.Duration {
	d := time.Second << uint(attempts-1)
	if d > time.Minute || d <= 0 {
		return time.Minute
	}
	return d
}
