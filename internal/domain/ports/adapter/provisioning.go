package adapter

import (
	"context"

	"esim-storefront/internal/domain/model"
)

// Provisioner synthesizes eSIM credentials for a completed payment.
// The webhook processor calls it at most once per order, gated by the
// payment status guard; double invocation is a wiring bug, not a case
// implementations need to absorb.
type Provisioner interface {
	Name() string
	Provision(ctx context.Context, orderID, planName, country string) (model.CredentialBundle, error)
}
