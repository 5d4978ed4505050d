package model

import (
	"time"

	"esim-storefront/internal/domain"
)

type EsimStatus string

const (
	EsimStatusInactive  EsimStatus = "inactive"
	EsimStatusActive    EsimStatus = "active"
	EsimStatusExpired   EsimStatus = "expired"
	EsimStatusSuspended EsimStatus = "suspended"
)

var esimTransitions = map[EsimStatus][]EsimStatus{
	EsimStatusInactive:  {EsimStatusActive},
	EsimStatusActive:    {EsimStatusExpired, EsimStatusSuspended},
	EsimStatusSuspended: {EsimStatusActive, EsimStatusExpired},
	EsimStatusExpired:   {},
}

func (s EsimStatus) CanTransitionTo(next EsimStatus) bool {
	for _, allowed := range esimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s EsimStatus) Valid() bool {
	_, ok := esimTransitions[s]
	return ok
}

// Esim holds the provisioning credentials issued for a completed order.
// The credential fields are immutable once generated; only Status moves.
// At most one eSIM exists per order, reissue is not supported.
type Esim struct {
	ID             string
	OrderID        string
	QRCodeData     string // PNG data URL encoding the LPA string
	SMDPAddress    string
	ActivationCode string
	ICCID          string
	Status         EsimStatus
	CreatedAt      time.Time
	ActivatedAt    *time.Time
}

// CredentialBundle is what a provisioner synthesizes for one order.
type CredentialBundle struct {
	QRCodeData     string
	SMDPAddress    string
	ActivationCode string
	ICCID          string
}

// NewEsim constructs an inactive eSIM record from a credential bundle.
func NewEsim(id, orderID string, cred CredentialBundle) (*Esim, error) {
	if id == "" || orderID == "" || cred.ActivationCode == "" || cred.SMDPAddress == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Esim{
		ID:             id,
		OrderID:        orderID,
		QRCodeData:     cred.QRCodeData,
		SMDPAddress:    cred.SMDPAddress,
		ActivationCode: cred.ActivationCode,
		ICCID:          cred.ICCID,
		Status:         EsimStatusInactive,
		CreatedAt:      time.Now(),
	}, nil
}
