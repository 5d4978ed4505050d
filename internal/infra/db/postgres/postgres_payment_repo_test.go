//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"

	"github.com/google/uuid"
)

func TestPaymentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	// 1. Setup
	ctx := context.Background()
	repo := NewPaymentRepo(testPool)
	orderRepo := NewOrderRepo(testPool)
	planRepo := NewPlanRepo(testPool)

	plan, _ := model.NewPlan(uuid.NewString(), "Asia 10GB", "JP", "Asia", "10GB", 15, 2999, "USD")

	setupPrerequisites := func(t *testing.T, sessionID string) *model.Order {
		cleanup(t)
		if err := planRepo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("failed to save plan: %v", err)
		}
		order, _ := model.NewOrder(uuid.NewString(), nil, plan, sessionID, "buyer@example.com", "Ada")
		if err := orderRepo.Save(ctx, nil, order); err != nil {
			t.Fatalf("failed to save order: %v", err)
		}
		return order
	}

	t.Run("should save and find a payment", func(t *testing.T) {
		order := setupPrerequisites(t, "cs_pay_find")

		payment, err := model.NewPayment(uuid.NewString(), order, "pi_find", "cus_1")
		if err != nil {
			t.Fatalf("failed to build payment: %v", err)
		}
		if err := repo.Save(ctx, nil, payment); err != nil {
			t.Fatalf("Failed to save new payment: %v", err)
		}

		foundByID, err := repo.FindByID(ctx, nil, payment.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if foundByID.AmountCents != 2999 || foundByID.Status != model.PaymentStatusProcessing {
			t.Fatal("Did not find the correct payment by ID")
		}

		foundByOrder, err := repo.FindByOrderID(ctx, nil, order.ID)
		if err != nil || foundByOrder.ID != payment.ID {
			t.Fatalf("FindByOrderID failed: %v", err)
		}

		foundByIntent, err := repo.FindByPaymentIntentID(ctx, nil, "pi_find")
		if err != nil || foundByIntent.ID != payment.ID {
			t.Fatalf("FindByPaymentIntentID failed: %v", err)
		}
	})

	t.Run("should allow at most one payment per order", func(t *testing.T) {
		order := setupPrerequisites(t, "cs_pay_unique")

		first, _ := model.NewPayment(uuid.NewString(), order, "pi_u1", "cus_1")
		second, _ := model.NewPayment(uuid.NewString(), order, "pi_u2", "cus_1")

		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("failed to save first payment: %v", err)
		}
		if err := repo.Save(ctx, nil, second); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists for second payment on the order, got %v", err)
		}
	})

	t.Run("UpdateStatus should be a compare-and-swap", func(t *testing.T) {
		order := setupPrerequisites(t, "cs_pay_cas")
		payment, _ := model.NewPayment(uuid.NewString(), order, "pi_cas", "cus_1")
		repo.Save(ctx, nil, payment)

		if err := repo.UpdateStatus(ctx, nil, payment.ID, model.PaymentStatusProcessing, model.PaymentStatusSucceeded); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		err := repo.UpdateStatus(ctx, nil, payment.ID, model.PaymentStatusProcessing, model.PaymentStatusSucceeded)
		if !errors.Is(err, domain.ErrStaleTransition) {
			t.Errorf("expected ErrStaleTransition on replay, got %v", err)
		}

		// A late failure event cannot demote a settled payment.
		err = repo.UpdateStatus(ctx, nil, payment.ID, model.PaymentStatusSucceeded, model.PaymentStatusFailed)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition for succeeded->failed, got %v", err)
		}

		updated, _ := repo.FindByID(ctx, nil, payment.ID)
		if updated.Status != model.PaymentStatusSucceeded {
			t.Errorf("expected status succeeded, got %s", updated.Status)
		}
	})
}
