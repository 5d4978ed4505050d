package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
	"esim-storefront/internal/domain/ports/repository"
	"esim-storefront/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutResult is what the storefront needs to redirect the buyer.
type CheckoutResult struct {
	OrderID     string
	SessionID   string
	CheckoutURL string
}

type CheckoutUseCase interface {
	// CreateSession opens a hosted checkout for one plan and records a
	// pending order keyed by the provider session id.
	CreateSession(ctx context.Context, planID, email, name string, userID *string) (*CheckoutResult, error)
}

type checkoutUC struct {
	plans   repository.PlanRepository
	orders  repository.OrderRepository
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewCheckoutUseCase(plans repository.PlanRepository, orders repository.OrderRepository, gateway adapter.PaymentGateway, logger *zerolog.Logger) *checkoutUC {
	return &checkoutUC{plans: plans, orders: orders, gateway: gateway, log: logger}
}

func (u *checkoutUC) CreateSession(ctx context.Context, planID, email, name string, userID *string) (*CheckoutResult, error) {
	email = strings.TrimSpace(email)
	if planID == "" || email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrNotFound
	}

	orderID := uuid.NewString()
	session, err := u.gateway.CreateCheckoutSession(ctx, adapter.CheckoutSessionInput{
		OrderReference: orderID,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		AmountCents:    plan.PriceCents,
		Currency:       plan.Currency,
		CustomerEmail:  email,
	})
	if err != nil {
		u.log.Error().Err(err).Str("plan_id", planID).Msg("checkout session creation failed")
		return nil, err
	}

	order, err := model.NewOrder(orderID, userID, plan, session.ID, email, name)
	if err != nil {
		return nil, err
	}
	if err := u.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, err
	}
	metrics.IncOrder(string(model.OrderStatusPending))

	u.log.Info().Str("order_id", order.ID).Str("plan_id", plan.ID).Msg("checkout session created")
	return &CheckoutResult{OrderID: order.ID, SessionID: session.ID, CheckoutURL: session.URL}, nil
}
