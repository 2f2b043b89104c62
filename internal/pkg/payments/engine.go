package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ledgerline/paygate/app/models"
	"gorm.io/gorm"
)

// placeholderIntentPrefix marks a payment-intent id that was not yet known
// when the payment row was created. The real id is backfilled from the
// checkout.session.completed event.
const placeholderIntentPrefix = "pending:"

// saveRetries bounds how often a conflicting save is re-read and retried
// before the delivery is reported as transient.
const saveRetries = 3

// Engine applies verified provider events to local payment state at most
// once per event id. The ledger's unique index is the correctness
// mechanism; the seen cache only saves a round trip on hot retries.
type Engine struct {
	store  Store
	ledger Ledger
	seen   *SeenCache
}

// NewEngine creates a reconciliation engine on top of a payments repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{store: repo, ledger: repo}
}

// NewEngineFromDB creates a reconciliation engine from a GORM DB handle.
func NewEngineFromDB(db *gorm.DB) *Engine {
	return NewEngine(NewRepository(db))
}

// SetSeenCache attaches an optional short-lived duplicate cache.
func (e *Engine) SetSeenCache(c *SeenCache) {
	e.seen = c
}

// Reconcile decides whether an event is new, resolves the affected payment,
// applies the transition and commits the ledger entry. The ledger check
// runs before any mutation; the ledger write runs after the mutation, so a
// crash in between leaves only a harmless re-application on retry.
func (e *Engine) Reconcile(ctx context.Context, event *DomainEvent) (Outcome, error) {
	if event == nil || event.EventID == "" {
		return OutcomeIgnored, fmt.Errorf("%w: event id is required", ErrMalformedPayload)
	}

	if e.seen.Seen(ctx, event.EventID) {
		return OutcomeAlreadyHandled, nil
	}
	processed, err := e.ledger.HasProcessed(ctx, event.EventID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("ledger lookup for event %s: %w", event.EventID, err)
	}
	if processed {
		e.seen.Remember(ctx, event.EventID)
		return OutcomeAlreadyHandled, nil
	}

	payment, err := e.resolvePayment(ctx, event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("payments: no local payment for event %s (%s)", event.EventID, event.Type)
			return OutcomeIgnored, nil
		}
		return OutcomeIgnored, fmt.Errorf("payment lookup for event %s: %w", event.EventID, err)
	}
	if payment == nil {
		log.Printf("payments: unrecognized subject in event %s (%s)", event.EventID, event.Type)
		return OutcomeIgnored, nil
	}

	outcome := OutcomeApplied
	target, hasTransition := TargetStatus(event.Type)
	if hasTransition {
		if err := e.applyTransition(ctx, payment, event, target); err != nil {
			return OutcomeIgnored, err
		}
	} else {
		log.Printf("payments: no transition for event type %s (event %s)", event.Type, event.EventID)
		outcome = OutcomeIgnored
	}

	if err := e.ledger.MarkProcessed(ctx, event.EventID, string(event.Type)); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			// A concurrent delivery of the same event id won the race.
			e.seen.Remember(ctx, event.EventID)
			return OutcomeAlreadyHandled, nil
		}
		return OutcomeIgnored, fmt.Errorf("ledger mark for event %s: %w", event.EventID, err)
	}
	e.seen.Remember(ctx, event.EventID)
	return outcome, nil
}

func (e *Engine) resolvePayment(ctx context.Context, event *DomainEvent) (*models.Payment, error) {
	switch event.Subject {
	case SubjectCheckoutSession:
		return e.store.FindBySessionID(ctx, event.CheckoutSession.ID)
	case SubjectPaymentIntent:
		return e.store.FindByPaymentIntentID(ctx, event.PaymentIntent.ID)
	default:
		return nil, nil
	}
}

// applyTransition moves the payment to the target status unless it is
// already terminal. On a version conflict it re-reads and re-evaluates the
// terminal guard, so a losing concurrent delivery degrades to a no-op.
func (e *Engine) applyTransition(ctx context.Context, payment *models.Payment, event *DomainEvent, target models.PaymentStatus) error {
	for attempt := 0; attempt < saveRetries; attempt++ {
		if payment.Status.IsTerminal() {
			log.Printf("payments: payment %s already %s, event %s is a no-op", payment.UUID, payment.Status, event.EventID)
			return nil
		}

		backfillIntentID(payment, event)
		payment.Status = target
		if target == models.PaymentStatusSucceeded && payment.CompletedAt == nil {
			now := time.Now().UTC()
			payment.CompletedAt = &now
		} else if target != models.PaymentStatusSucceeded {
			payment.CompletedAt = nil
		}

		err := e.store.Save(ctx, payment)
		if err == nil {
			log.Printf("payments: payment %s marked %s (event %s)", payment.UUID, target, event.EventID)
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("payment save for event %s: %w", event.EventID, err)
		}

		fresh, rerr := e.store.GetByID(ctx, payment.ID)
		if rerr != nil {
			return fmt.Errorf("payment reload for event %s: %w", event.EventID, rerr)
		}
		*payment = *fresh
	}
	return fmt.Errorf("payment save for event %s: %w", event.EventID, ErrConflict)
}

// backfillIntentID replaces a placeholder payment-intent id with the real
// one carried by a checkout session event.
func backfillIntentID(payment *models.Payment, event *DomainEvent) {
	if event.Subject != SubjectCheckoutSession {
		return
	}
	intentID := event.CheckoutSession.PaymentIntentID
	if intentID == "" || payment.StripePaymentIntentID == intentID {
		return
	}
	if strings.HasPrefix(payment.StripePaymentIntentID, placeholderIntentPrefix) {
		payment.StripePaymentIntentID = intentID
	}
}
