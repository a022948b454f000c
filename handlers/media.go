package handlers

import (
	"tournament-registration-system/middleware"
	"tournament-registration-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMediaRoutes(app *fiber.App, mediaService *services.MediaService, sponsorService *services.SponsorService, adminToken string) {
	// 🔓 Public routes
	app.Get("/media", mediaService.GetAllMedia)
	app.Get("/sponsors", sponsorService.GetAllSponsors)

	// 🔒 Admin-only routes
	admin := app.Group("/admin", middleware.AdminAuthMiddleware(adminToken))
	admin.Post("/media", mediaService.UploadMedia)
	admin.Delete("/media/:id", mediaService.DeleteMedia)
	admin.Post("/sponsors", sponsorService.CreateSponsor)
	admin.Put("/sponsors/:id", sponsorService.UpdateSponsor)
	admin.Delete("/sponsors/:id", sponsorService.DeleteSponsor)
}
