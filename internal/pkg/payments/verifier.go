package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerline/paygate/internal/pkg/env"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Verifier authenticates raw webhook bytes and parses them into a
// DomainEvent. Implementations must not mutate the body; the signature is
// computed over the exact bytes received.
type Verifier interface {
	Verify(rawBody []byte, signatureHeader string) (*DomainEvent, error)
}

type stripeVerifier struct {
	webhookSecret string
}

// NewStripeVerifier creates a verifier for Stripe-signed webhook payloads.
func NewStripeVerifier(webhookSecret string) Verifier {
	return &stripeVerifier{webhookSecret: webhookSecret}
}

// NewStripeVerifierFromEnv reads the webhook secret from STRIPE_WEBHOOK_SECRET.
func NewStripeVerifierFromEnv() Verifier {
	return NewStripeVerifier(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
}

func (v *stripeVerifier) Verify(rawBody []byte, signatureHeader string) (*DomainEvent, error) {
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("%w: missing Stripe-Signature header", ErrAuthentication)
	}
	if strings.TrimSpace(v.webhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", ErrAuthentication)
	}

	event, err := webhook.ConstructEventWithOptions(
		rawBody,
		signatureHeader,
		v.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrMalformedPayload)
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: missing event object", ErrMalformedPayload)
	}

	de := &DomainEvent{
		EventID: event.ID,
		Type:    EventType(event.Type),
	}

	switch de.Type {
	case EventCheckoutSessionCompleted,
		EventCheckoutSessionAsyncPaymentSucceeded,
		EventCheckoutSessionAsyncPaymentFailed:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil || session.ID == "" {
			return nil, fmt.Errorf("%w: invalid checkout session object", ErrMalformedPayload)
		}
		de.Subject = SubjectCheckoutSession
		de.CheckoutSession = CheckoutSessionRef{ID: session.ID}
		if session.PaymentIntent != nil {
			de.CheckoutSession.PaymentIntentID = session.PaymentIntent.ID
		}

	case EventPaymentIntentSucceeded,
		EventPaymentIntentProcessing,
		EventPaymentIntentCanceled,
		EventPaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
			return nil, fmt.Errorf("%w: invalid payment intent object", ErrMalformedPayload)
		}
		de.Subject = SubjectPaymentIntent
		de.PaymentIntent = PaymentIntentRef{ID: intent.ID}

	default:
		de.Subject = SubjectUnrecognized
	}

	return de, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
