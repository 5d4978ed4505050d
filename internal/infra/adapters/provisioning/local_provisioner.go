package provisioning

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
)

var _ adapter.Provisioner = (*LocalProvisioner)(nil)

// LocalProvisioner synthesizes eSIM credentials in-process: a grouped
// activation code, an ICCID, and a QR code encoding the GSMA LPA string
// LPA:1$<smdp>$<activation code>.
type LocalProvisioner struct {
	smdpAddress string
}

func NewLocalProvisioner(smdpAddress string) (*LocalProvisioner, error) {
	if smdpAddress == "" {
		return nil, errors.New("smdp address empty")
	}
	return &LocalProvisioner{smdpAddress: smdpAddress}, nil
}

func (p *LocalProvisioner) Name() string { return "local" }

func (p *LocalProvisioner) Provision(ctx context.Context, orderID, planName, country string) (model.CredentialBundle, error) {
	code, err := generateActivationCode()
	if err != nil {
		return model.CredentialBundle{}, err
	}
	iccid, err := generateICCID()
	if err != nil {
		return model.CredentialBundle{}, err
	}

	lpa := fmt.Sprintf("LPA:1$%s$%s", p.smdpAddress, code)
	png, err := qrcode.Encode(lpa, qrcode.Medium, 500)
	if err != nil {
		return model.CredentialBundle{}, fmt.Errorf("encode qr: %w", err)
	}

	return model.CredentialBundle{
		QRCodeData:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		SMDPAddress:    p.smdpAddress,
		ActivationCode: code,
		ICCID:          iccid,
	}, nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateActivationCode returns 16 random characters in groups of four,
// e.g. "K3QD-8XWM-P2NA-7FRT".
func generateActivationCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// generateICCID returns a 20-digit identifier with the telecom prefix 89.
func generateICCID() (string, error) {
	var b strings.Builder
	b.WriteString("89")
	for i := 0; i < 18; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
