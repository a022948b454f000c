package services

import (
	"log"
	"strings"
	"time"

	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var gameStatuses = map[string]bool{
	"scheduled": true,
	"live":      true,
	"finished":  true,
}

// GameService manages match fixtures and the live scores shown on the site.
type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

type gameRequest struct {
	TournamentID string `json:"tournament_id"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	AgeGroup     string `json:"age_group"`
	Pitch        string `json:"pitch"`
	KickoffAt    string `json:"kickoff_at"`
}

func (s *GameService) CreateGame(c *fiber.Ctx) error {
	var req gameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.TournamentID == "" || req.HomeTeam == "" || req.AwayTeam == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournament_id, home_team, and away_team are required"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", req.TournamentID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournament_id not found"})
	}

	var kickoff time.Time
	if req.KickoffAt != "" {
		var err error
		kickoff, err = time.Parse(time.RFC3339, req.KickoffAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid kickoff_at (use RFC3339)"})
		}
	}

	game := &models.Game{
		ID:           uuid.NewString(),
		TournamentID: req.TournamentID,
		HomeTeam:     strings.TrimSpace(req.HomeTeam),
		AwayTeam:     strings.TrimSpace(req.AwayTeam),
		AgeGroup:     req.AgeGroup,
		Pitch:        req.Pitch,
		Status:       "scheduled",
		KickoffAt:    kickoff,
	}
	if err := s.DB.Create(game).Error; err != nil {
		log.Printf("ERROR creating game: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// GetLiveGames is the public scoreboard feed.
func (s *GameService) GetLiveGames(c *fiber.Ctx) error {
	var games []models.Game
	err := s.DB.Where("status = ?", "live").Order("kickoff_at ASC").Find(&games).Error
	if err != nil {
		log.Printf("ERROR fetching live games: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch live games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetTournamentGames(c *fiber.Ctx) error {
	query := s.DB.Where("tournament_id = ?", c.Params("id")).Order("kickoff_at ASC")
	if ageGroup := c.Query("age_group"); ageGroup != "" {
		query = query.Where("age_group = ?", ageGroup)
	}

	var games []models.Game
	if err := query.Find(&games).Error; err != nil {
		log.Printf("ERROR fetching games for tournament %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

// UpdateScore handles PATCH /admin/games/:id/score — the live-score path staff
// hit repeatedly during match days.
func (s *GameService) UpdateScore(c *fiber.Ctx) error {
	var req struct {
		HomeScore *int    `json:"home_score"`
		AwayScore *int    `json:"away_score"`
		Status    *string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	if req.HomeScore != nil {
		if *req.HomeScore < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scores must be non-negative"})
		}
		game.HomeScore = *req.HomeScore
	}
	if req.AwayScore != nil {
		if *req.AwayScore < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scores must be non-negative"})
		}
		game.AwayScore = *req.AwayScore
	}
	if req.Status != nil {
		if !gameStatuses[*req.Status] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be one of scheduled, live, finished"})
		}
		game.Status = *req.Status
	}

	if err := s.DB.Save(&game).Error; err != nil {
		log.Printf("ERROR updating score for game %s: %v", game.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(game)
}

func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.Game{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
