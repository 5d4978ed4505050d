//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
	"esim-storefront/internal/domain/ports/repository"
)

// memTxManager runs the function directly; the mem repos enforce the
// conditional-update semantics themselves, so unit tests exercise the
// same winner/loser behavior without a database.
type memTxManager struct{}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type memPlanRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Plan
	findErr error
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, _ repository.Tx, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *plan
	m.store[plan.ID] = &cp
	return nil
}

func (m *memPlanRepo) Delete(ctx context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) ListActive(ctx context.Context, _ repository.Tx, filter repository.PlanFilter) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, p := range m.store {
		if !p.Active {
			continue
		}
		if filter.Country != "" && p.Country != filter.Country {
			continue
		}
		if filter.Region != "" && p.Region != filter.Region {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type memOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.Order)}
}

func (m *memOrderRepo) Save(ctx context.Context, _ repository.Tx, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.CheckoutSessionID == order.CheckoutSessionID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *order
	m.store[order.ID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByCheckoutSessionID(ctx context.Context, _ repository.Tx, sessionID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.CheckoutSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) FindByPaymentIntentID(ctx context.Context, _ repository.Tx, intentID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.PaymentIntentID != nil && *o.PaymentIntentID == intentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, from, to model.OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrStaleTransition
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (m *memOrderRepo) SetPaymentIntent(ctx context.Context, _ repository.Tx, id string, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return domain.ErrStaleTransition
	}
	o.Status = model.OrderStatusProcessing
	o.PaymentIntentID = &intentID
	o.UpdatedAt = time.Now()
	return nil
}

type memPaymentRepo struct {
	mu    sync.Mutex
	store map[string]*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) Save(ctx context.Context, _ repository.Tx, payment *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderID == payment.OrderID || p.PaymentIntentID == payment.PaymentIntentID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *payment
	m.store[payment.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) FindByOrderID(ctx context.Context, _ repository.Tx, orderID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) FindByPaymentIntentID(ctx context.Context, _ repository.Tx, intentID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.PaymentIntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, from, to model.PaymentStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != from {
		return domain.ErrStaleTransition
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return nil
}

type memEsimRepo struct {
	mu    sync.Mutex
	store map[string]*model.Esim
}

func newMemEsimRepo() *memEsimRepo {
	return &memEsimRepo{store: make(map[string]*model.Esim)}
}

func (m *memEsimRepo) Save(ctx context.Context, _ repository.Tx, esim *model.Esim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.OrderID == esim.OrderID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *esim
	m.store[esim.ID] = &cp
	return nil
}

func (m *memEsimRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Esim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEsimRepo) FindByOrderID(ctx context.Context, _ repository.Tx, orderID string) (*model.Esim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.OrderID == orderID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memEsimRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, from, to model.EsimStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.Status != from {
		return domain.ErrStaleTransition
	}
	e.Status = to
	if to == model.EsimStatusActive {
		now := time.Now()
		e.ActivatedAt = &now
	}
	return nil
}

type memWebhookEventRepo struct {
	mu    sync.Mutex
	store map[string]*model.WebhookEvent // by provider event id
}

func newMemWebhookEventRepo() *memWebhookEventRepo {
	return &memWebhookEventRepo{store: make(map[string]*model.WebhookEvent)}
}

func (m *memWebhookEventRepo) Admit(ctx context.Context, _ repository.Tx, event *model.WebhookEvent) (*model.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prior, ok := m.store[event.ProviderEventID]; ok {
		cp := *prior
		return &cp, nil
	}
	cp := *event
	m.store[event.ProviderEventID] = &cp
	out := cp
	return &out, nil
}

func (m *memWebhookEventRepo) FindByProviderEventID(ctx context.Context, _ repository.Tx, providerEventID string) (*model.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[providerEventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memWebhookEventRepo) Close(ctx context.Context, _ repository.Tx, id string, status model.WebhookEventStatus, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			now := time.Now()
			e.ProcessedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memWebhookEventRepo) all() []*model.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.WebhookEvent
	for _, e := range m.store {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

type memNotificationRepo struct {
	mu    sync.Mutex
	store map[string]*model.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{store: make(map[string]*model.Notification)}
}

func (m *memNotificationRepo) Save(ctx context.Context, _ repository.Tx, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.store[n.ID] = &cp
	return nil
}

func (m *memNotificationRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNotificationRepo) ListByOrderID(ctx context.Context, _ repository.Tx, orderID string) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.store {
		if n.OrderID == orderID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memNotificationRepo) ClaimPending(ctx context.Context, _ repository.Tx, limit int) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*model.Notification
	for _, n := range m.store {
		if len(out) >= limit {
			break
		}
		if n.Status != model.NotificationStatusPending {
			continue
		}
		if n.NextRetryAt != nil && n.NextRetryAt.After(now) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memNotificationRepo) CountPending(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cnt := 0
	for _, n := range m.store {
		if n.Status == model.NotificationStatusPending {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memNotificationRepo) MarkSent(ctx context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = model.NotificationStatusSent
	n.UpdatedAt = time.Now()
	return nil
}

func (m *memNotificationRepo) MarkFailed(ctx context.Context, _ repository.Tx, id string, attempts int, nextRetryAt time.Time, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Attempts = attempts
	n.LastError = &lastError
	if nextRetryAt.IsZero() {
		n.Status = model.NotificationStatusFailed
		n.NextRetryAt = nil
	} else {
		retry := nextRetryAt
		n.NextRetryAt = &retry
	}
	n.UpdatedAt = time.Now()
	return nil
}

// mockGateway lets tests script the gateway per call.
type mockGateway struct {
	CreateFunc func(ctx context.Context, in adapter.CheckoutSessionInput) (*adapter.CheckoutSession, error)
	VerifyFunc func(payload []byte, signature string) (*adapter.Event, error)
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) CreateCheckoutSession(ctx context.Context, in adapter.CheckoutSessionInput) (*adapter.CheckoutSession, error) {
	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, in)
	}
	return &adapter.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

func (g *mockGateway) VerifyWebhook(payload []byte, signature string) (*adapter.Event, error) {
	if g.VerifyFunc != nil {
		return g.VerifyFunc(payload, signature)
	}
	return nil, domain.ErrSignature
}

type mockProvisioner struct {
	mu         sync.Mutex
	calls      int
	ProvideErr error
}

func (p *mockProvisioner) Name() string { return "mock" }

func (p *mockProvisioner) Provision(ctx context.Context, orderID, planName, country string) (model.CredentialBundle, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.ProvideErr != nil {
		return model.CredentialBundle{}, p.ProvideErr
	}
	return model.CredentialBundle{
		QRCodeData:     "data:image/png;base64,AAAA",
		SMDPAddress:    "smdp.example.com",
		ActivationCode: "AAAA-BBBB-CCCC-DDDD",
		ICCID:          "89000000000000000000",
	}, nil
}

func (p *mockProvisioner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type mockRenderer struct {
	RenderErr error
}

func (r *mockRenderer) Render(kind model.NotificationKind, payload []byte) (string, string, error) {
	if r.RenderErr != nil {
		return "", "", r.RenderErr
	}
	return "subject " + string(kind), "<p>body</p>", nil
}

type mockMailer struct {
	mu      sync.Mutex
	SendErr error
	sent    []string // recipients in send order
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}
