package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ledgerline/paygate/internal/pkg/database"
	"github.com/ledgerline/paygate/internal/pkg/payments"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const checkoutTimeout = 20 * time.Second

// newPaymentService is swapped out in tests.
var newPaymentService = func() *payments.Service {
	return payments.NewServiceFromDB(database.GetDB())
}

type createCheckoutRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,min=3,max=10"`
}

func (r *createCheckoutRequest) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// HandleCreateCheckoutSession creates a provider checkout session and the
// local Pending payment record.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	req := createCheckoutRequest{Currency: "usd"}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request_body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "details": err.Error()})
	}

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), checkoutTimeout)
	defer cancel()

	payment, checkoutURL, err := svc.CreateCheckout(ctx, req.Amount, req.Currency)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_create_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"payment_id":               payment.UUID,
		"stripe_session_id":        payment.StripeSessionID,
		"stripe_payment_intent_id": payment.StripePaymentIntentID,
		"checkout_url":             checkoutURL,
	})
}

// HandleGetPayment resolves a payment by its public id.
func HandleGetPayment(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment_id_required"})
	}

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	payment, err := svc.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payment_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(payment)
}
