package usecase

import (
	"context"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase exposes the plan catalog.
type PlanUseCase interface {
	// Save creates or updates a plan (seeding and admin tooling).
	Save(ctx context.Context, plan *model.Plan) error
	// Get returns a plan by id, active or not.
	Get(ctx context.Context, id string) (*model.Plan, error)
	// ListActive returns purchasable plans, optionally narrowed by
	// destination, ordered by price ascending.
	ListActive(ctx context.Context, filter repository.PlanFilter) ([]*model.Plan, error)
	// Retire soft-deletes a plan so existing orders keep their reference.
	Retire(ctx context.Context, id string) error
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) Save(ctx context.Context, plan *model.Plan) error {
	if plan.IsZero() {
		return domain.ErrInvalidArgument
	}
	return u.plans.Save(ctx, repository.NoTX, plan)
}

func (u *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.plans.FindByID(ctx, repository.NoTX, id)
}

func (u *planUC) ListActive(ctx context.Context, filter repository.PlanFilter) ([]*model.Plan, error) {
	return u.plans.ListActive(ctx, repository.NoTX, filter)
}

func (u *planUC) Retire(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	return u.plans.Delete(ctx, repository.NoTX, id)
}
