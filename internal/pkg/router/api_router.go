package router

import (
	"github.com/ledgerline/paygate/app/controllers"

	"github.com/gofiber/fiber/v2"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")

	// Provider webhooks (no auth, signature-verified in the service)
	api.Post("/webhook", controllers.HandleStripeWebhook)

	api.Post("/checkout/create-session", controllers.HandleCreateCheckoutSession)
	api.Get("/payments/:id", controllers.HandleGetPayment)

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
