package usecase

import (
	"context"
	"errors"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderDetail aggregates an order with its payment and provisioning
// records for the storefront order page.
type OrderDetail struct {
	Order   *model.Order
	Payment *model.Payment // nil until checkout completes
	Esim    *model.Esim    // nil until payment settles
}

type OrderUseCase interface {
	Get(ctx context.Context, orderID string) (*OrderDetail, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	esims    repository.EsimRepository
}

func NewOrderUseCase(orders repository.OrderRepository, payments repository.PaymentRepository, esims repository.EsimRepository) *orderUC {
	return &orderUC{orders: orders, payments: payments, esims: esims}
}

func (u *orderUC) Get(ctx context.Context, orderID string) (*OrderDetail, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	order, err := u.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{Order: order}

	payment, err := u.payments.FindByOrderID(ctx, repository.NoTX, orderID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	detail.Payment = payment

	esim, err := u.esims.FindByOrderID(ctx, repository.NoTX, orderID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	detail.Esim = esim

	return detail, nil
}
