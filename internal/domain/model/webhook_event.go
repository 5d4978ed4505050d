package model

import (
	"time"

	"esim-storefront/internal/domain"
)

type WebhookEventStatus string

const (
	WebhookEventStatusReceived   WebhookEventStatus = "received"
	WebhookEventStatusProcessing WebhookEventStatus = "processing"
	WebhookEventStatusProcessed  WebhookEventStatus = "processed"
	WebhookEventStatusFailed     WebhookEventStatus = "failed"
)

// WebhookEvent is an append-only ledger entry for one authenticated
// provider delivery. Entries are correlated by the provider's unique
// event id, never by event type, so concurrent duplicate deliveries
// always close the entry they actually belong to. Entries are never
// deleted.
type WebhookEvent struct {
	ID              string // ULID, sortable audit trail
	ProviderEventID string // provider's event id, unique
	EventType       string
	Payload         []byte // raw event JSON, stored before any side effect
	Status          WebhookEventStatus
	ErrorMessage    *string
	ReceivedAt      time.Time
	ProcessedAt     *time.Time
}

// NewWebhookEvent admits a verified delivery into the ledger.
func NewWebhookEvent(id, providerEventID, eventType string, payload []byte) (*WebhookEvent, error) {
	if id == "" || providerEventID == "" || eventType == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &WebhookEvent{
		ID:              id,
		ProviderEventID: providerEventID,
		EventType:       eventType,
		Payload:         payload,
		Status:          WebhookEventStatusReceived,
		ReceivedAt:      time.Now(),
	}, nil
}
