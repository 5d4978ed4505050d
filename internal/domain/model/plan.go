package model

import (
	"time"

	"esim-storefront/internal/domain"
)

// Plan is a purchasable eSIM data plan for a destination country or region.
// Prices are stored in minor units (cents) to avoid float errors.
type Plan struct {
	ID           string
	Name         string
	Country      string
	Region       string
	DataAmount   string // human label, e.g. "10GB"
	ValidityDays int
	PriceCents   int64
	Currency     string // ISO 4217, e.g. "USD"
	Description  string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name, country, region, dataAmount string, validityDays int, priceCents int64, currency string) (*Plan, error) {
	if id == "" || name == "" || country == "" || validityDays <= 0 || priceCents <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Plan{
		ID:           id,
		Name:         name,
		Country:      country,
		Region:       region,
		DataAmount:   dataAmount,
		ValidityDays: validityDays,
		PriceCents:   priceCents,
		Currency:     currency,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
