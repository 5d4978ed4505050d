//go:build !integration

package model

import (
	"errors"
	"testing"

	"esim-storefront/internal/domain"
)

// --- Plan Model Tests ---

func TestNewPlan(t *testing.T) {
	t.Run("should create a new plan successfully", func(t *testing.T) {
		plan, err := NewPlan("plan-1", "Japan 10GB", "JP", "Asia", "10GB", 30, 1999, "USD")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if plan == nil {
			t.Fatal("expected plan to be non-nil, but got nil")
		}
		if !plan.Active {
			t.Error("expected a new plan to be active by default")
		}
		if plan.PriceCents != 1999 {
			t.Errorf("expected price to be 1999, but got %d", plan.PriceCents)
		}
	})

	t.Run("should fail with non-positive price", func(t *testing.T) {
		plan, err := NewPlan("plan-1", "Japan 10GB", "JP", "Asia", "10GB", 30, 0, "USD")
		if err == nil {
			t.Fatal("expected an error for zero price, but got nil")
		}
		if plan != nil {
			t.Error("expected plan to be nil on error, but it was not")
		}
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected error to be ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should fail with missing country", func(t *testing.T) {
		_, err := NewPlan("plan-1", "Japan 10GB", "", "Asia", "10GB", 30, 1999, "USD")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

// --- Order Model Tests ---

func TestNewOrder(t *testing.T) {
	plan, _ := NewPlan("plan-1", "Japan 10GB", "JP", "Asia", "10GB", 30, 1999, "USD")

	t.Run("should create a pending guest order", func(t *testing.T) {
		order, err := NewOrder("order-1", nil, plan, "cs_123", "buyer@example.com", "Buyer")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if order.Status != OrderStatusPending {
			t.Errorf("expected status pending, but got %s", order.Status)
		}
		if order.UserID != nil {
			t.Error("expected guest order to have nil user id")
		}
		if order.AmountCents != plan.PriceCents || order.Currency != plan.Currency {
			t.Error("expected amount and currency to be copied from the plan")
		}
		if order.PaymentIntentID != nil {
			t.Error("expected payment intent id to be unset at creation")
		}
	})

	t.Run("should fail without customer email", func(t *testing.T) {
		_, err := NewOrder("order-1", nil, plan, "cs_123", "", "Buyer")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should fail without checkout session id", func(t *testing.T) {
		_, err := NewOrder("order-1", nil, plan, "", "buyer@example.com", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusFailed, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusCompleted, OrderStatusProcessing, false},
		{OrderStatusFailed, OrderStatusProcessing, false},
		{OrderStatusRefunded, OrderStatusCompleted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// --- Payment Model Tests ---

func TestNewPayment(t *testing.T) {
	plan, _ := NewPlan("plan-1", "Japan 10GB", "JP", "Asia", "10GB", 30, 1999, "USD")
	order, _ := NewOrder("order-1", nil, plan, "cs_123", "buyer@example.com", "Buyer")

	t.Run("should create a processing payment linked to the order", func(t *testing.T) {
		payment, err := NewPayment("pay-1", order, "pi_123", "cus_123")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if payment.Status != PaymentStatusProcessing {
			t.Errorf("expected status processing, but got %s", payment.Status)
		}
		if payment.AmountCents != order.AmountCents {
			t.Error("expected amount to be copied from the order")
		}
	})

	t.Run("should fail without a payment intent id", func(t *testing.T) {
		_, err := NewPayment("pay-1", order, "", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusProcessing, PaymentStatusSucceeded, true},
		{PaymentStatusProcessing, PaymentStatusFailed, true},
		{PaymentStatusSucceeded, PaymentStatusSucceeded, false},
		{PaymentStatusSucceeded, PaymentStatusRefunded, true},
		{PaymentStatusFailed, PaymentStatusSucceeded, false},
		{PaymentStatusPending, PaymentStatusProcessing, true},
		{PaymentStatusCanceled, PaymentStatusProcessing, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// --- Esim Model Tests ---

func TestNewEsim(t *testing.T) {
	cred := CredentialBundle{
		QRCodeData:     "data:image/png;base64,abc",
		SMDPAddress:    "smdp.example.com",
		ActivationCode: "ABCD-EFGH-IJKL-MNOP",
		ICCID:          "8912345678901234567",
	}

	t.Run("should create an inactive esim record", func(t *testing.T) {
		esim, err := NewEsim("esim-1", "order-1", cred)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if esim.Status != EsimStatusInactive {
			t.Errorf("expected status inactive, but got %s", esim.Status)
		}
		if esim.ActivatedAt != nil {
			t.Error("expected activated_at to be unset")
		}
	})

	t.Run("should fail without an activation code", func(t *testing.T) {
		bad := cred
		bad.ActivationCode = ""
		_, err := NewEsim("esim-1", "order-1", bad)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

// --- WebhookEvent Model Tests ---

func TestNewWebhookEvent(t *testing.T) {
	t.Run("should admit an event as received", func(t *testing.T) {
		evt, err := NewWebhookEvent("01HX5", "evt_123", "checkout.session.completed", []byte(`{}`))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if evt.Status != WebhookEventStatusReceived {
			t.Errorf("expected status received, but got %s", evt.Status)
		}
	})

	t.Run("should fail without a provider event id", func(t *testing.T) {
		_, err := NewWebhookEvent("01HX5", "", "checkout.session.completed", nil)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

// --- Notification Model Tests ---

func TestNewNotification(t *testing.T) {
	t.Run("should enqueue a pending outbox row", func(t *testing.T) {
		n, err := NewNotification("n-1", "order-1", NotificationKindOrderConfirmation, "buyer@example.com", map[string]string{"plan": "Japan 10GB"})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n.Status != NotificationStatusPending {
			t.Errorf("expected status pending, but got %s", n.Status)
		}
		if n.Attempts != 0 {
			t.Errorf("expected zero attempts, but got %d", n.Attempts)
		}
	})

	t.Run("should fail without a recipient", func(t *testing.T) {
		_, err := NewNotification("n-1", "order-1", NotificationKindOrderConfirmation, "", nil)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}
