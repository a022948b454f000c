package services

import (
	"log"
	"strings"

	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SponsorService struct {
	DB *gorm.DB
}

func NewSponsorService(db *gorm.DB) *SponsorService {
	return &SponsorService{DB: db}
}

func (s *SponsorService) GetAllSponsors(c *fiber.Ctx) error {
	var sponsors []models.Sponsor
	err := s.DB.Order("\"sort_order\" ASC, name ASC").Find(&sponsors).Error
	if err != nil {
		log.Printf("ERROR fetching sponsors: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch sponsors"})
	}
	return c.JSON(sponsors)
}

type sponsorRequest struct {
	Name       string `json:"name"`
	LogoURL    string `json:"logo_url"`
	WebsiteURL string `json:"website_url"`
	Tier       string `json:"tier"`
	SortOrder  int    `json:"sort_order"`
}

func (s *SponsorService) CreateSponsor(c *fiber.Ctx) error {
	var req sponsorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.Tier == "" {
		req.Tier = "partner"
	}

	sponsor := &models.Sponsor{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		LogoURL:    req.LogoURL,
		WebsiteURL: req.WebsiteURL,
		Tier:       req.Tier,
		SortOrder:  req.SortOrder,
	}
	if err := s.DB.Create(sponsor).Error; err != nil {
		log.Printf("ERROR creating sponsor: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(sponsor)
}

func (s *SponsorService) UpdateSponsor(c *fiber.Ctx) error {
	var sponsor models.Sponsor
	if err := s.DB.First(&sponsor, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sponsor not found"})
	}

	var req sponsorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Name) != "" {
		sponsor.Name = strings.TrimSpace(req.Name)
	}
	if req.LogoURL != "" {
		sponsor.LogoURL = req.LogoURL
	}
	if req.WebsiteURL != "" {
		sponsor.WebsiteURL = req.WebsiteURL
	}
	if req.Tier != "" {
		sponsor.Tier = req.Tier
	}
	sponsor.SortOrder = req.SortOrder

	if err := s.DB.Save(&sponsor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(sponsor)
}

func (s *SponsorService) DeleteSponsor(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.Sponsor{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete sponsor"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sponsor not found"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
