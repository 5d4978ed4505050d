package repository

import (
	"context"

	"esim-storefront/internal/domain/model"
)

// WebhookEventRepository is the append-only event ledger. Admit must run
// before any business side effect so every authenticated delivery is
// observable even if processing crashes afterwards.
type WebhookEventRepository interface {
	// Admit inserts the entry, or returns the previously admitted entry
	// for the same provider event id when this is a redelivery.
	Admit(ctx context.Context, tx Tx, event *model.WebhookEvent) (*model.WebhookEvent, error)
	FindByProviderEventID(ctx context.Context, tx Tx, providerEventID string) (*model.WebhookEvent, error)
	// Close marks the specific entry processed or failed. Correlation is
	// by ledger id, never by event type.
	Close(ctx context.Context, tx Tx, id string, status model.WebhookEventStatus, errMsg *string) error
}
