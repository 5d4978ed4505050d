package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"esim-storefront/internal/domain/ports/repository"
	"esim-storefront/internal/infra/metrics"
	"esim-storefront/internal/usecase"
)

// OutboxDispatcher drains the notification outbox on a ticker. It is
// safe to run more than one instance; row claiming partitions the
// backlog between them.
type OutboxDispatcher struct {
	notificationUC usecase.NotificationUseCase
	notifications  repository.NotificationRepository
	interval       time.Duration
	batchSize      int
	log            *zerolog.Logger
}

func NewOutboxDispatcher(
	notificationUC usecase.NotificationUseCase,
	notifications repository.NotificationRepository,
	interval time.Duration,
	batchSize int,
	logger *zerolog.Logger,
) *OutboxDispatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &OutboxDispatcher{
		notificationUC: notificationUC,
		notifications:  notifications,
		interval:       interval,
		batchSize:      batchSize,
		log:            logger,
	}
}

// Start runs the dispatch loop until the context is cancelled. Run it
// in a goroutine or submit ticks to a Pool.
func (d *OutboxDispatcher) Start(ctx context.Context, pool *Pool) {
	d.log.Info().Dur("interval", d.interval).Msg("outbox dispatcher started")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("outbox dispatcher stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				d.dispatchOnce(ctx)
				return nil
			})
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	sent, failed, err := d.notificationUC.DispatchPending(ctx, d.batchSize)
	if err != nil {
		d.log.Error().Err(err).Msg("outbox dispatch pass failed")
		return
	}
	if sent > 0 || failed > 0 {
		d.log.Info().Int("sent", sent).Int("failed", failed).Msg("outbox dispatch pass finished")
	}

	if depth, err := d.notifications.CountPending(ctx, repository.NoTX); err == nil {
		metrics.SetOutboxDepth(depth)
	}
}
