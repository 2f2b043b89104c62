package payments

import (
	"strings"

	"github.com/ledgerline/paygate/app/models"
)

// TargetStatus returns the payment status an event type drives toward.
// The second return is false for event types that carry no transition.
// payment_intent.payment_failed maps to Canceled, matching the provider
// dashboard's treatment of abandoned card attempts.
func TargetStatus(t EventType) (models.PaymentStatus, bool) {
	switch t {
	case EventCheckoutSessionCompleted, EventPaymentIntentSucceeded:
		return models.PaymentStatusSucceeded, true
	case EventPaymentIntentCanceled, EventPaymentIntentPaymentFailed:
		return models.PaymentStatusCanceled, true
	default:
		return models.PaymentStatusPending, false
	}
}

// MapIntentStatus converts a raw Stripe payment-intent status string into
// the local payment status.
func MapIntentStatus(status string) models.PaymentStatus {
	switch strings.TrimSpace(status) {
	case "succeeded":
		return models.PaymentStatusSucceeded
	case "canceled":
		return models.PaymentStatusCanceled
	case "requires_payment_method", "requires_confirmation", "requires_action", "processing":
		return models.PaymentStatusPending
	default:
		return models.PaymentStatusFailed
	}
}
