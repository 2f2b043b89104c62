package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerline/paygate/internal/pkg/env"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

// CheckoutSession holds the provider identifiers a local payment record
// needs after session creation.
type CheckoutSession struct {
	SessionID       string
	PaymentIntentID string
	IntentStatus    string
	URL             string
}

// CheckoutClient creates provider checkout sessions. It is the outbound
// collaborator of the checkout flow; the reconciliation engine never calls
// the provider.
type CheckoutClient interface {
	CreateSession(ctx context.Context, amount int64, currency string) (*CheckoutSession, error)
}

type stripeCheckout struct {
	successURL string
	cancelURL  string
}

// NewStripeCheckoutFromEnv configures the Stripe API key and redirect URLs
// from the environment.
func NewStripeCheckoutFromEnv() CheckoutClient {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	return &stripeCheckout{
		successURL: base + "/success.html",
		cancelURL:  base + "/cancel.html",
	}
}

func (s *stripeCheckout) CreateSession(ctx context.Context, amount int64, currency string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(currency)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Card Payment"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	out := &CheckoutSession{SessionID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
		out.IntentStatus = string(sess.PaymentIntent.Status)
	}
	return out, nil
}
