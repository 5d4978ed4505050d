package model

import (
	"encoding/json"
	"time"

	"esim-storefront/internal/domain"
)

type NotificationKind string

const (
	NotificationKindOrderConfirmation NotificationKind = "order_confirmation"
	NotificationKindEsimActivation    NotificationKind = "esim_activation"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// OrderConfirmationParams is the outbox payload for an order
// confirmation email.
type OrderConfirmationParams struct {
	CustomerName string `json:"customer_name"`
	OrderNumber  string `json:"order_number"`
	PlanName     string `json:"plan_name"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	OrdersURL    string `json:"orders_url"`
}

// EsimActivationParams is the outbox payload for an activation email.
type EsimActivationParams struct {
	CustomerName   string `json:"customer_name"`
	PlanName       string `json:"plan_name"`
	QRCodeData     string `json:"qr_code_data"`
	SMDPAddress    string `json:"smdp_address"`
	ActivationCode string `json:"activation_code"`
}

// Notification is a transactional-outbox row. The intent to notify is
// written in the same database transaction as the state transition that
// triggers it; a separate dispatcher renders and sends the email and
// retries independently, so a mail outage never rolls back an order
// transition.
type Notification struct {
	ID          string
	OrderID     string
	Kind        NotificationKind
	Recipient   string
	Payload     []byte // JSON template params, see usecase render structs
	Status      NotificationStatus
	Attempts    int
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewNotification enqueues an outbox row for an order.
func NewNotification(id, orderID string, kind NotificationKind, recipient string, params any) (*Notification, error) {
	if id == "" || orderID == "" || recipient == "" {
		return nil, domain.ErrInvalidArgument
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Notification{
		ID:        id,
		OrderID:   orderID,
		Kind:      kind,
		Recipient: recipient,
		Payload:   payload,
		Status:    NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
