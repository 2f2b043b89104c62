package payments

// EventType identifies the provider notification kinds known to this service.
// The full checkout/payment-intent lifecycle is listed; only a subset drives
// a status transition (see TargetStatus).
type EventType string

const (
	// Checkout lifecycle
	EventCheckoutSessionCompleted             EventType = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded EventType = "checkout.session.async_payment_succeeded"
	EventCheckoutSessionAsyncPaymentFailed    EventType = "checkout.session.async_payment_failed"

	// PaymentIntent lifecycle
	EventPaymentIntentSucceeded     EventType = "payment_intent.succeeded"
	EventPaymentIntentProcessing    EventType = "payment_intent.processing"
	EventPaymentIntentCanceled      EventType = "payment_intent.canceled"
	EventPaymentIntentPaymentFailed EventType = "payment_intent.payment_failed"
)

// SubjectKind tags which payload variant a DomainEvent carries.
type SubjectKind int

const (
	SubjectUnrecognized SubjectKind = iota
	SubjectCheckoutSession
	SubjectPaymentIntent
)

// CheckoutSessionRef identifies a provider checkout session. The payment
// intent id is included when the provider sent it along with the session.
type CheckoutSessionRef struct {
	ID              string
	PaymentIntentID string
}

// PaymentIntentRef identifies a provider payment intent.
type PaymentIntentRef struct {
	ID string
}

// DomainEvent is the verified, parsed form of a provider webhook event.
// Exactly one of CheckoutSession/PaymentIntent is meaningful, selected by
// Subject.
type DomainEvent struct {
	EventID         string
	Type            EventType
	Subject         SubjectKind
	CheckoutSession CheckoutSessionRef
	PaymentIntent   PaymentIntentRef
}

// Outcome describes what Reconcile did with an event.
type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeAlreadyHandled Outcome = "already_handled"
	OutcomeIgnored        Outcome = "ignored"
)

// WebhookStatus is the classification handed back to the HTTP layer.
type WebhookStatus int

const (
	// WebhookAccepted covers applied, already-handled and ignored events;
	// the provider must see success so it stops retrying.
	WebhookAccepted WebhookStatus = iota
	// WebhookRejected covers signature and payload failures.
	WebhookRejected
	// WebhookTransientFailure covers store/ledger errors; the provider
	// retries and the event converges on a later delivery.
	WebhookTransientFailure
)

// WebhookResult is the outcome of handling one inbound webhook delivery.
type WebhookResult struct {
	Status  WebhookStatus
	Outcome Outcome
	Err     error
}
