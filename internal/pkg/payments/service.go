package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerline/paygate/app/models"
	"github.com/ledgerline/paygate/internal/pkg/cache"
	"gorm.io/gorm"
)

const seenCacheTTL = 30 * time.Minute

// Service is the application-facing payments API: checkout creation,
// payment lookup, and the inbound webhook boundary.
type Service struct {
	verifier Verifier
	engine   *Engine
	checkout CheckoutClient
	store    Store
}

// NewService assembles a service from explicit collaborators.
func NewService(verifier Verifier, engine *Engine, checkout CheckoutClient, store Store) *Service {
	return &Service{verifier: verifier, engine: engine, checkout: checkout, store: store}
}

// NewServiceFromDB wires the Stripe verifier, the reconciliation engine
// with its redis seen-cache, and the Stripe checkout client.
func NewServiceFromDB(db *gorm.DB) *Service {
	repo := NewRepository(db)
	engine := NewEngine(repo)
	engine.SetSeenCache(NewSeenCache(cache.GetClient(), seenCacheTTL))
	return &Service{
		verifier: NewStripeVerifierFromEnv(),
		engine:   engine,
		checkout: NewStripeCheckoutFromEnv(),
		store:    repo,
	}
}

// HandleWebhook verifies one raw webhook delivery, reconciles it and
// classifies the result for the HTTP layer. Verification failures never
// reach the ledger or the store.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) WebhookResult {
	event, err := s.verifier.Verify(rawBody, signatureHeader)
	if err != nil {
		return WebhookResult{Status: WebhookRejected, Err: err}
	}

	outcome, err := s.engine.Reconcile(ctx, event)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return WebhookResult{Status: WebhookRejected, Err: err}
		}
		return WebhookResult{Status: WebhookTransientFailure, Err: err}
	}
	return WebhookResult{Status: WebhookAccepted, Outcome: outcome}
}

// CreateCheckout creates a provider checkout session and the local Pending
// payment record. It returns the payment and the provider-hosted URL the
// customer is redirected to.
func (s *Service) CreateCheckout(ctx context.Context, amount int64, currency string) (*models.Payment, string, error) {
	cur := strings.ToLower(strings.TrimSpace(currency))
	if amount <= 0 || cur == "" {
		return nil, "", errors.New("amount and currency are required")
	}

	sess, err := s.checkout.CreateSession(ctx, amount, cur)
	if err != nil {
		return nil, "", err
	}

	intentID := sess.PaymentIntentID
	if intentID == "" {
		intentID = placeholderIntentPrefix + sess.SessionID
	}
	// Terminal states only ever come from reconciliation.
	status := models.PaymentStatusPending
	if sess.IntentStatus != "" {
		if mapped := MapIntentStatus(sess.IntentStatus); !mapped.IsTerminal() {
			status = mapped
		}
	}

	payment := &models.Payment{
		StripeSessionID:       sess.SessionID,
		StripePaymentIntentID: intentID,
		Amount:                amount,
		Currency:              cur,
		Status:                status,
	}
	if err := payment.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.store.Create(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("payment create: %w", err)
	}
	return payment, sess.URL, nil
}

// GetPayment resolves a payment by its public UUID.
func (s *Service) GetPayment(ctx context.Context, uuid string) (*models.Payment, error) {
	return s.store.GetByUUID(ctx, uuid)
}
