package provisioning

import (
	"context"

	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
)

var _ adapter.Provisioner = (*NoopProvisioner)(nil)

// NoopProvisioner returns fixed credentials. Test use only.
type NoopProvisioner struct {
	Err error
}

func (p *NoopProvisioner) Name() string { return "noop" }

func (p *NoopProvisioner) Provision(ctx context.Context, orderID, planName, country string) (model.CredentialBundle, error) {
	if p.Err != nil {
		return model.CredentialBundle{}, p.Err
	}
	return model.CredentialBundle{
		QRCodeData:     "data:image/png;base64,AAAA",
		SMDPAddress:    "smdp.example.com",
		ActivationCode: "AAAA-BBBB-CCCC-DDDD",
		ICCID:          "89000000000000000000",
	}, nil
}
