package services

import (
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"tournament-registration-system/models"
	"tournament-registration-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaService manages the public gallery. Files are stored in R2; rows carry
// the public CDN URL.
type MediaService struct {
	DB *gorm.DB
}

func NewMediaService(db *gorm.DB) *MediaService {
	return &MediaService{DB: db}
}

func (s *MediaService) GetAllMedia(c *fiber.Ctx) error {
	query := s.DB.Order("\"sort_order\" ASC, created_at DESC")
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var items []models.MediaItem
	if err := query.Find(&items).Error; err != nil {
		log.Printf("ERROR fetching media: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch media"})
	}
	return c.JSON(items)
}

// UploadMedia handles multipart POST /admin/media.
func (s *MediaService) UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if file.Size > 50*1024*1024 { // 50MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 50MB)"})
	}

	kind := c.FormValue("kind")
	if kind == "" {
		kind = "image"
	}
	if kind != "image" && kind != "video" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind must be image or video"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "media/" + uuid.NewString() + strings.ToLower(ext)

	url, err := utils.UploadMediaFile(file, key)
	if err != nil {
		log.Printf("❌ [MEDIA] Upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload file"})
	}

	sortOrder := 0
	if orderStr := c.FormValue("sort_order"); orderStr != "" {
		if n, err := strconv.Atoi(orderStr); err == nil {
			sortOrder = n
		}
	}

	item := &models.MediaItem{
		ID:         uuid.NewString(),
		Title:      c.FormValue("title"),
		URL:        url,
		StorageKey: key,
		Kind:       kind,
		SortOrder:  sortOrder,
	}
	if err := s.DB.Create(item).Error; err != nil {
		log.Printf("ERROR creating media item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *MediaService) DeleteMedia(c *fiber.Ctx) error {
	var item models.MediaItem
	if err := s.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "media item not found"})
	}

	if err := s.DB.Delete(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete media item"})
	}

	// Object removal is best-effort; an orphaned object costs storage, not correctness.
	if err := utils.DeleteMediaFile(item.StorageKey); err != nil {
		log.Printf("⚠️  [MEDIA] Failed to remove object %s: %v", item.StorageKey, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
