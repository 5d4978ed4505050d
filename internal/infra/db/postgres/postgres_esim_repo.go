package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
)

var _ repository.EsimRepository = (*esimRepo)(nil)

type esimRepo struct{ pool *pgxpool.Pool }

func NewEsimRepo(pool *pgxpool.Pool) *esimRepo {
	return &esimRepo{pool: pool}
}

const esimColumns = `id, order_id, qr_code_data, smdp_address, activation_code, iccid, status, created_at, activated_at`

func (r *esimRepo) Save(ctx context.Context, tx repository.Tx, e *model.Esim) error {
	const q = `
INSERT INTO esims (id, order_id, qr_code_data, smdp_address, activation_code, iccid, status, created_at, activated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.OrderID, e.QRCodeData, e.SMDPAddress, e.ActivationCode, e.ICCID, e.Status, e.CreatedAt, e.ActivatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// reissue for the same order is forbidden
			return domain.ErrAlreadyExists
		}
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *esimRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Esim, error) {
	q := `SELECT ` + esimColumns + ` FROM esims WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanEsim(row)
}

func (r *esimRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Esim, error) {
	q := `SELECT ` + esimColumns + ` FROM esims WHERE order_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanEsim(row)
}

func (r *esimRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, from, to model.EsimStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	q := `UPDATE esims SET status=$3 WHERE id=$1 AND status=$2;`
	if to == model.EsimStatusActive {
		q = `UPDATE esims SET status=$3, activated_at=NOW() WHERE id=$1 AND status=$2;`
	}
	tag, err := execSQL(ctx, r.pool, tx, q, id, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleTransition
	}
	return nil
}

func scanEsim(row pgx.Row) (*model.Esim, error) {
	e := &model.Esim{}
	err := row.Scan(&e.ID, &e.OrderID, &e.QRCodeData, &e.SMDPAddress, &e.ActivationCode, &e.ICCID, &e.Status, &e.CreatedAt, &e.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
