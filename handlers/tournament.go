package handlers

import (
	"tournament-registration-system/middleware"
	"tournament-registration-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, gameService *services.GameService, adminToken string) {
	// 🔓 Public routes
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	app.Get("/tournaments/:id/games", gameService.GetTournamentGames)
	app.Get("/games/live", gameService.GetLiveGames)

	// 🔒 Admin-only routes
	admin := app.Group("/admin", middleware.AdminAuthMiddleware(adminToken))

	admin.Post("/tournaments", tournamentService.CreateTournament)
	admin.Put("/tournaments/:id", tournamentService.UpdateTournament)
	admin.Delete("/tournaments/:id", tournamentService.DeleteTournament)
	admin.Patch("/tournaments/:id/status", tournamentService.UpdateTournamentStatus)
	admin.Patch("/tournaments/:id/feature", tournamentService.ToggleFeaturedStatus)

	admin.Post("/games", gameService.CreateGame)
	admin.Patch("/games/:id/score", gameService.UpdateScore)
	admin.Delete("/games/:id", gameService.DeleteGame)
}
