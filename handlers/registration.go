package handlers

import (
	"tournament-registration-system/middleware"
	"tournament-registration-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRegistrationRoutes(
	app *fiber.App,
	checkoutService *services.CheckoutService,
	webhookService *services.WebhookService,
	notificationService *services.NotificationService,
	registrationService *services.RegistrationService,
	adminToken string,
) {
	// 🔓 Public payment flow
	app.Post("/checkout", checkoutService.CreateCheckoutSession)
	app.Post("/contact", notificationService.SubmitContactForm)

	// Stripe calls this directly; it authenticates via signature, not tokens.
	app.Post("/webhooks/stripe", webhookService.HandleStripeWebhook)

	// 🔒 Admin-only routes
	admin := app.Group("/admin", middleware.AdminAuthMiddleware(adminToken))
	admin.Get("/registrations", registrationService.GetAllRegistrations)
	admin.Get("/registrations/:id", registrationService.GetRegistrationByID)
	admin.Delete("/registrations/:id", registrationService.DeleteRegistration)
}
