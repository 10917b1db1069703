package webhookRoutes

import (
	webhookController "campuspay/controllers/webhook"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes registers inbound gateway callbacks. These are
// authenticated by signature, not by JWT.
func SetupWebhookRoutes(app *fiber.App) {
	webhookGroup := app.Group("/webhooks")

	webhookGroup.Post("/paymongo", webhookController.HandlePayMongo)
}
