package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/ledgerline/paygate/internal/pkg/database"
	"github.com/ledgerline/paygate/internal/pkg/payments"
	"github.com/gofiber/fiber/v2"
)

const webhookTimeout = 15 * time.Second

// HandleStripeWebhook accepts asynchronous payment notifications. The body
// bytes are passed through unmodified because the signature covers them.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	result := svc.HandleWebhook(ctx, rawBody, signature)
	if result.Err != nil {
		log.Printf("webhook: %v", result.Err)
	}
	return webhookResponse(c, result)
}

func webhookResponse(c *fiber.Ctx, result payments.WebhookResult) error {
	switch result.Status {
	case payments.WebhookRejected:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_webhook"})
	case payments.WebhookTransientFailure:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	default:
		resp := fiber.Map{"ok": true}
		if result.Outcome == payments.OutcomeAlreadyHandled {
			resp["duplicate"] = true
		}
		if result.Outcome == payments.OutcomeIgnored {
			resp["ignored"] = true
		}
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}
