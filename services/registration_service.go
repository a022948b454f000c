package services

import (
	"errors"
	"log"

	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// gormRegistrationStore is the Postgres-backed RegistrationStore used by the
// webhook receiver.
type gormRegistrationStore struct {
	db *gorm.DB
}

func (g gormRegistrationStore) BySessionID(sessionID string) (*models.Registration, error) {
	var reg models.Registration
	err := g.db.First(&reg, "stripe_session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (g gormRegistrationStore) Create(reg *models.Registration) error {
	return g.db.Create(reg).Error
}

func (g gormRegistrationStore) TournamentName(tournamentID string) (string, error) {
	var t models.Tournament
	if err := g.db.Select("id", "name").First(&t, "id = ?", tournamentID).Error; err != nil {
		return "", err
	}
	return t.Name, nil
}

// RegistrationService exposes the admin view over paid registrations.
type RegistrationService struct {
	DB *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{DB: db}
}

func (s *RegistrationService) GetAllRegistrations(c *fiber.Ctx) error {
	query := s.DB.Preload("Tournament").Order("created_at DESC")
	if tournamentID := c.Query("tournament_id"); tournamentID != "" {
		query = query.Where("tournament_id = ?", tournamentID)
	}
	if ageGroup := c.Query("age_group"); ageGroup != "" {
		query = query.Where("age_group = ?", ageGroup)
	}

	var registrations []models.Registration
	if err := query.Find(&registrations).Error; err != nil {
		log.Printf("ERROR fetching registrations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch registrations"})
	}
	return c.JSON(registrations)
}

func (s *RegistrationService) GetRegistrationByID(c *fiber.Ctx) error {
	var reg models.Registration
	if err := s.DB.Preload("Tournament").First(&reg, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "registration not found"})
	}
	return c.JSON(reg)
}

func (s *RegistrationService) DeleteRegistration(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.Registration{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete registration"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "registration not found"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
