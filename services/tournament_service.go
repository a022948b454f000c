package services

import (
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tournament-registration-system/models"
	"tournament-registration-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var tournamentStatuses = map[string]bool{
	"upcoming":  true,
	"ongoing":   true,
	"completed": true,
}

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// CreateTournament creates a tournament from a multipart form so the admin
// dashboard can attach the hero photo in the same request.
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	startDateStr := c.FormValue("start_date")
	if name == "" || startDateStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and start_date are required"})
	}

	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
	}

	var endDate time.Time
	if endDateStr := c.FormValue("end_date"); endDateStr != "" {
		endDate, err = time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
	}

	entryFee := 0.0
	if feeStr := c.FormValue("entry_fee"); feeStr != "" {
		if f, err := strconv.ParseFloat(feeStr, 64); err == nil && f >= 0 {
			entryFee = f
		} else {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry_fee must be a non-negative number"})
		}
	}

	maxTeams := 0
	if maxStr := c.FormValue("max_teams"); maxStr != "" {
		if n, err := strconv.Atoi(maxStr); err == nil && n >= 0 {
			maxTeams = n
		} else {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_teams must be a non-negative integer"})
		}
	}

	// Hero photo → R2
	var mainPhotoURL string
	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "tournaments/main/" + uuid.NewString() + ext
		url, err := utils.UploadMediaFile(mainPhoto, key)
		if err != nil {
			log.Printf("❌ [TOURNAMENT] Failed to upload main photo: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		mainPhotoURL = url
	}

	tournament := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         slug.Make(name),
		Description:  c.FormValue("description"),
		Location:     c.FormValue("location"),
		AgeGroups:    c.FormValue("age_groups"),
		EntryFee:     entryFee,
		MaxTeams:     maxTeams,
		Status:       "upcoming",
		StartDate:    startDate,
		EndDate:      endDate,
		IsFeatured:   strings.ToLower(c.FormValue("is_featured")) == "true",
		MainPhotoURL: mainPhotoURL,
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("ERROR creating tournament: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(tournament)
}

// GetAllTournaments is the public listing. Optional filters: ?status=, ?featured=true.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	query := s.DB.Model(&models.Tournament{}).Order("start_date ASC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var tournaments []models.Tournament
	if err := query.Find(&tournaments).Error; err != nil {
		log.Printf("ERROR fetching tournaments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}

	minis := make([]models.MiniTournament, 0, len(tournaments))
	for _, t := range tournaments {
		count := s.registeredCount(t.ID)
		minis = append(minis, models.MiniTournament{
			ID:              t.ID,
			Name:            t.Name,
			Slug:            t.Slug,
			Status:          t.Status,
			Location:        t.Location,
			AgeGroups:       t.AgeGroups,
			EntryFee:        t.EntryFee,
			MaxTeams:        t.MaxTeams,
			StartDate:       t.StartDate,
			EndDate:         t.EndDate,
			IsFeatured:      t.IsFeatured,
			MainPhotoURL:    t.MainPhotoURL,
			RegisteredCount: count,
		})
	}
	return c.JSON(minis)
}

// GetTournamentByID returns full detail, resolving either id or slug.
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	idOrSlug := c.Params("id")

	var tournament models.Tournament
	err := s.DB.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"sort_order\" ASC")
		}).
		First(&tournament, "id = ? OR slug = ?", idOrSlug, idOrSlug).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
	}

	tournament.RegisteredCount = s.registeredCount(tournament.ID)
	if tournament.MaxTeams > 0 {
		slots := int64(tournament.MaxTeams) - tournament.RegisteredCount
		if slots < 0 {
			slots = 0
		}
		tournament.AvailableSlots = slots
	}
	return c.JSON(tournament)
}

func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
	}

	var updates struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Location    *string  `json:"location"`
		AgeGroups   *string  `json:"age_groups"`
		EntryFee    *float64 `json:"entry_fee"`
		MaxTeams    *int     `json:"max_teams"`
		StartDate   *string  `json:"start_date"`
		EndDate     *string  `json:"end_date"`
	}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if updates.Name != nil && strings.TrimSpace(*updates.Name) != "" {
		tournament.Name = strings.TrimSpace(*updates.Name)
		tournament.Slug = slug.Make(tournament.Name)
	}
	if updates.Description != nil {
		tournament.Description = *updates.Description
	}
	if updates.Location != nil {
		tournament.Location = *updates.Location
	}
	if updates.AgeGroups != nil {
		tournament.AgeGroups = *updates.AgeGroups
	}
	if updates.EntryFee != nil {
		if *updates.EntryFee < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry_fee must be a non-negative number"})
		}
		tournament.EntryFee = *updates.EntryFee
	}
	if updates.MaxTeams != nil {
		if *updates.MaxTeams < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_teams must be a non-negative integer"})
		}
		tournament.MaxTeams = *updates.MaxTeams
	}
	if updates.StartDate != nil {
		t, err := time.Parse(time.RFC3339, *updates.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
		}
		tournament.StartDate = t
	}
	if updates.EndDate != nil {
		t, err := time.Parse(time.RFC3339, *updates.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
		tournament.EndDate = t
	}

	if err := s.DB.Save(&tournament).Error; err != nil {
		log.Printf("ERROR updating tournament %s: %v", tournament.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(tournament)
}

func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TournamentPhoto{}, "tournament_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Game{}, "tournament_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tournament{}, "id = ?", id).Error
	})
	if err != nil {
		log.Printf("ERROR deleting tournament %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete tournament"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// UpdateTournamentStatus handles PATCH /admin/tournaments/:id/status.
func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil || !tournamentStatuses[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be one of upcoming, ongoing, completed"})
	}

	result := s.DB.Model(&models.Tournament{}).Where("id = ?", c.Params("id")).Update("status", req.Status)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(fiber.Map{"status": req.Status})
}

// ToggleFeaturedStatus flips whether a tournament shows in the featured strip.
func (s *TournamentService) ToggleFeaturedStatus(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
	}

	tournament.IsFeatured = !tournament.IsFeatured
	if err := s.DB.Model(&tournament).Update("is_featured", tournament.IsFeatured).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(fiber.Map{"is_featured": tournament.IsFeatured})
}

func (s *TournamentService) registeredCount(tournamentID string) int64 {
	var count int64
	if err := s.DB.Model(&models.Registration{}).
		Where("tournament_id = ? AND payment_status = ?", tournamentID, "paid").
		Count(&count).Error; err != nil {
		log.Printf("ERROR counting registrations for %s: %v", tournamentID, err)
	}
	return count
}
