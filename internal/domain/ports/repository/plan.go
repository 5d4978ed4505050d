package repository

import (
	"context"

	"esim-storefront/internal/domain/model"
)

// PlanFilter narrows catalog listings. Empty fields match everything.
type PlanFilter struct {
	Country string
	Region  string
}

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	// ListActive returns active plans ordered by price ascending.
	ListActive(ctx context.Context, tx Tx, filter PlanFilter) ([]*model.Plan, error)
}
