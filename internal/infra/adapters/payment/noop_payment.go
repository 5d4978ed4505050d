package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway to use in tests and
// dev mode. "Signatures" are the literal string "valid" and payloads are
// taken at face value as pre-decoded events.
type NoopPaymentGateway struct {
	mu  sync.Mutex
	seq int64
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateCheckoutSession(ctx context.Context, in adapter.CheckoutSessionInput) (*adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("cs_noop_%d", g.seq)
	return &adapter.CheckoutSession{ID: id, URL: "https://example.test/pay/" + id}, nil
}

func (g *NoopPaymentGateway) VerifyWebhook(payload []byte, signature string) (*adapter.Event, error) {
	if signature != "valid" {
		return nil, domain.ErrSignature
	}
	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignature, err)
	}
	return &adapter.Event{
		ID:      envelope.ID,
		Type:    envelope.Type,
		Payload: payload,
		Object:  envelope.Data.Object,
	}, nil
}
