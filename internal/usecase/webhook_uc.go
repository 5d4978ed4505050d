package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"esim-storefront/internal/domain"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
	"esim-storefront/internal/domain/ports/repository"
	"esim-storefront/internal/infra/logging"
	"esim-storefront/internal/infra/metrics"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// WebhookUseCase drives the order lifecycle from provider deliveries.
//
// Every authenticated delivery is admitted into the event ledger before
// any side effect runs. The business transition for each event type is a
// single conditional status update inside one database transaction;
// losing that update (zero rows moved) means another delivery already
// performed the transition, and the loser acks without side effects.
// That makes N-fold redelivery, out-of-order arrival, and concurrent
// duplicates all converge on the same final state.
type WebhookUseCase interface {
	// Process verifies, records, and applies one raw delivery.
	// domain.ErrSignature means the delivery was not authenticated and was
	// not recorded; any other error means the ledger entry is marked
	// failed and the provider should redeliver.
	Process(ctx context.Context, payload []byte, signature string) error
}

type webhookUC struct {
	gateway       adapter.PaymentGateway
	provisioner   adapter.Provisioner
	txm           repository.TransactionManager
	events        repository.WebhookEventRepository
	orders        repository.OrderRepository
	payments      repository.PaymentRepository
	esims         repository.EsimRepository
	plans         repository.PlanRepository
	notifications repository.NotificationRepository
	ordersPageURL string
	log           *zerolog.Logger
}

func NewWebhookUseCase(
	gateway adapter.PaymentGateway,
	provisioner adapter.Provisioner,
	txm repository.TransactionManager,
	events repository.WebhookEventRepository,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	esims repository.EsimRepository,
	plans repository.PlanRepository,
	notifications repository.NotificationRepository,
	ordersPageURL string,
	logger *zerolog.Logger,
) *webhookUC {
	return &webhookUC{
		gateway:       gateway,
		provisioner:   provisioner,
		txm:           txm,
		events:        events,
		orders:        orders,
		payments:      payments,
		esims:         esims,
		plans:         plans,
		notifications: notifications,
		ordersPageURL: ordersPageURL,
		log:           logger,
	}
}

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventPaymentSucceeded  = "payment_intent.succeeded"
	eventPaymentFailed     = "payment_intent.payment_failed"
)

func (u *webhookUC) Process(ctx context.Context, payload []byte, signature string) error {
	start := time.Now()

	event, err := u.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		metrics.IncWebhookEvent("unknown", "rejected")
		u.log.Warn().Err(err).Msg("webhook signature rejected")
		return err
	}
	ctx = logging.WithEventID(ctx, event.ID)

	entry, err := model.NewWebhookEvent(ulid.Make().String(), event.ID, event.Type, event.Payload)
	if err != nil {
		return err
	}
	admitted, err := u.events.Admit(ctx, repository.NoTX, entry)
	if err != nil {
		return err
	}
	if admitted.ID != entry.ID && admitted.Status == model.WebhookEventStatusProcessed {
		// Redelivery of an entry another worker already finished.
		metrics.IncWebhookEvent(event.Type, "duplicate")
		return nil
	}

	err = u.dispatch(ctx, event)
	metrics.ObserveWebhookLatency(event.Type, float64(time.Since(start).Milliseconds()))
	if err != nil {
		msg := err.Error()
		if closeErr := u.events.Close(ctx, repository.NoTX, admitted.ID, model.WebhookEventStatusFailed, &msg); closeErr != nil {
			u.log.Error().Err(closeErr).Str("ledger_id", admitted.ID).Msg("failed to close ledger entry")
		}
		metrics.IncWebhookEvent(event.Type, "failed")
		u.log.Error().Err(err).Str("event_type", event.Type).Msg("webhook processing failed")
		return err
	}

	if err := u.events.Close(ctx, repository.NoTX, admitted.ID, model.WebhookEventStatusProcessed, nil); err != nil {
		return err
	}
	metrics.IncWebhookEvent(event.Type, "processed")
	return nil
}

func (u *webhookUC) dispatch(ctx context.Context, event *adapter.Event) error {
	switch event.Type {
	case eventCheckoutCompleted:
		return u.handleCheckoutCompleted(ctx, event)
	case eventPaymentSucceeded:
		return u.handlePaymentSucceeded(ctx, event)
	case eventPaymentFailed:
		return u.handlePaymentFailed(ctx, event)
	default:
		// Ledger-only: recorded and acked so the provider stops resending.
		u.log.Debug().Str("event_type", event.Type).Msg("ignoring unhandled event type")
		return nil
	}
}

// checkoutSessionObject is the slice of the provider's checkout session
// we act on.
type checkoutSessionObject struct {
	ID              string `json:"id"`
	PaymentIntent   string `json:"payment_intent"`
	Customer        string `json:"customer"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
}

type paymentIntentObject struct {
	ID string `json:"id"`
}

func (u *webhookUC) handleCheckoutCompleted(ctx context.Context, event *adapter.Event) error {
	var session checkoutSessionObject
	if err := json.Unmarshal(event.Object, &session); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}
	if session.ID == "" || session.PaymentIntent == "" {
		return fmt.Errorf("checkout session missing id or payment intent: %w", domain.ErrInvalidArgument)
	}

	order, err := u.orders.FindByCheckoutSessionID(ctx, repository.NoTX, session.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// Session we never opened. Ack so the provider stops resending.
		u.log.Warn().Str("session_id", session.ID).Msg("checkout completed for unknown session")
		return nil
	}
	if err != nil {
		return err
	}
	ctx = logging.WithOrderID(ctx, order.ID)

	plan, err := u.plans.FindByID(ctx, repository.NoTX, order.PlanID)
	if err != nil {
		return err
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// The conditional update is the only duplicate guard: zero rows
		// moved means another delivery already claimed this transition.
		if err := u.orders.SetPaymentIntent(ctx, tx, order.ID, session.PaymentIntent); err != nil {
			return err
		}

		payment, err := model.NewPayment(uuid.NewString(), order, session.PaymentIntent, session.Customer)
		if err != nil {
			return err
		}
		if err := u.payments.Save(ctx, tx, payment); err != nil {
			return err
		}

		n, err := model.NewNotification(uuid.NewString(), order.ID, model.NotificationKindOrderConfirmation, order.CustomerEmail, model.OrderConfirmationParams{
			CustomerName: customerName(order),
			OrderNumber:  order.ID,
			PlanName:     plan.Name,
			Amount:       formatAmount(order.AmountCents),
			Currency:     order.Currency,
			OrdersURL:    u.ordersPageURL,
		})
		if err != nil {
			return err
		}
		return u.notifications.Save(ctx, tx, n)
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		u.log.Info().Str("order_id", order.ID).Msg("checkout completion already applied")
		return nil
	}
	if err != nil {
		return err
	}

	metrics.IncOrder(string(model.OrderStatusProcessing))
	metrics.IncPayment(string(model.PaymentStatusProcessing))
	u.log.Info().Str("order_id", order.ID).Str("intent_id", session.PaymentIntent).Msg("order moved to processing")
	return nil
}

func (u *webhookUC) handlePaymentSucceeded(ctx context.Context, event *adapter.Event) error {
	var intent paymentIntentObject
	if err := json.Unmarshal(event.Object, &intent); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}
	if intent.ID == "" {
		return fmt.Errorf("payment intent missing id: %w", domain.ErrInvalidArgument)
	}

	payment, err := u.payments.FindByPaymentIntentID(ctx, repository.NoTX, intent.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// Settlement arrived before checkout completion was processed.
		// Acked without side effects; the provider's redelivery of the
		// completion event will rebuild the chain, and a later redelivery
		// of this one lands normally.
		u.log.Warn().Str("intent_id", intent.ID).Msg("payment succeeded for unknown intent")
		return nil
	}
	if err != nil {
		return err
	}

	order, err := u.orders.FindByID(ctx, repository.NoTX, payment.OrderID)
	if err != nil {
		return err
	}
	ctx = logging.WithOrderID(ctx, order.ID)

	plan, err := u.plans.FindByID(ctx, repository.NoTX, order.PlanID)
	if err != nil {
		return err
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.payments.UpdateStatus(ctx, tx, payment.ID, model.PaymentStatusProcessing, model.PaymentStatusSucceeded); err != nil {
			return err
		}
		if err := u.orders.UpdateStatus(ctx, tx, order.ID, model.OrderStatusProcessing, model.OrderStatusCompleted); err != nil {
			return err
		}

		// Provisioning happens on the winning path only; the status
		// updates above have already claimed the transition, so a crash
		// here rolls everything back and redelivery starts over.
		cred, err := u.provisioner.Provision(ctx, order.ID, plan.Name, plan.Country)
		if err != nil {
			return fmt.Errorf("provision esim: %w", err)
		}
		esim, err := model.NewEsim(uuid.NewString(), order.ID, cred)
		if err != nil {
			return err
		}
		if err := u.esims.Save(ctx, tx, esim); err != nil {
			return err
		}

		n, err := model.NewNotification(uuid.NewString(), order.ID, model.NotificationKindEsimActivation, order.CustomerEmail, model.EsimActivationParams{
			CustomerName:   customerName(order),
			PlanName:       plan.Name,
			QRCodeData:     cred.QRCodeData,
			SMDPAddress:    cred.SMDPAddress,
			ActivationCode: cred.ActivationCode,
		})
		if err != nil {
			return err
		}
		return u.notifications.Save(ctx, tx, n)
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		u.log.Info().Str("order_id", order.ID).Msg("payment success already applied")
		return nil
	}
	if err != nil {
		return err
	}

	metrics.IncPayment(string(model.PaymentStatusSucceeded))
	metrics.IncOrder(string(model.OrderStatusCompleted))
	metrics.AddPaymentRevenue(order.Currency, order.AmountCents)
	metrics.IncEsimIssued()
	u.log.Info().Str("order_id", order.ID).Msg("order completed, esim issued")
	return nil
}

func (u *webhookUC) handlePaymentFailed(ctx context.Context, event *adapter.Event) error {
	var intent paymentIntentObject
	if err := json.Unmarshal(event.Object, &intent); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}
	if intent.ID == "" {
		return fmt.Errorf("payment intent missing id: %w", domain.ErrInvalidArgument)
	}

	payment, err := u.payments.FindByPaymentIntentID(ctx, repository.NoTX, intent.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	var order *model.Order
	switch {
	case payment != nil:
		order, err = u.orders.FindByID(ctx, repository.NoTX, payment.OrderID)
	default:
		// Failure can arrive before the completion event created the
		// payment row; the order may still carry the intent id.
		order, err = u.orders.FindByPaymentIntentID(ctx, repository.NoTX, intent.ID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		u.log.Warn().Str("intent_id", intent.ID).Msg("payment failed for unknown intent")
		return nil
	}
	if err != nil {
		return err
	}
	ctx = logging.WithOrderID(ctx, order.ID)

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if payment != nil {
			if err := u.payments.UpdateStatus(ctx, tx, payment.ID, model.PaymentStatusProcessing, model.PaymentStatusFailed); err != nil {
				return err
			}
		}
		return u.orders.UpdateStatus(ctx, tx, order.ID, model.OrderStatusProcessing, model.OrderStatusFailed)
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		u.log.Info().Str("order_id", order.ID).Msg("payment failure already applied")
		return nil
	}
	if err != nil {
		return err
	}

	metrics.IncPayment(string(model.PaymentStatusFailed))
	metrics.IncOrder(string(model.OrderStatusFailed))
	u.log.Info().Str("order_id", order.ID).Str("intent_id", intent.ID).Msg("order marked failed")
	return nil
}

func customerName(order *model.Order) string {
	if order.CustomerName != "" {
		return order.CustomerName
	}
	return order.CustomerEmail
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
