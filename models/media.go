package models

import (
	"time"
)

// MediaItem is a gallery entry (photo or video) shown on the marketing site.
// Files live in R2; the row only carries the public CDN URL.
type MediaItem struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title"`
	URL        string    `json:"url" gorm:"not null"`
	StorageKey string    `json:"-" gorm:"column:storage_key"` // R2 object key, for deletes
	Kind       string    `json:"kind" gorm:"default:'image'"` // image, video
	SortOrder  int       `json:"sort_order" gorm:"column:sort_order;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
