package repository

import (
	"context"

	"esim-storefront/internal/domain/model"
)

type EsimRepository interface {
	// Save inserts an eSIM record; the unique order_id constraint makes a
	// second issue for the same order domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, esim *model.Esim) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Esim, error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Esim, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, from, to model.EsimStatus) error
}
