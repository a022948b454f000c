package models

import (
	"time"
)

type Sponsor struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	LogoURL    string    `json:"logo_url"`
	WebsiteURL string    `json:"website_url"`
	Tier       string    `json:"tier" gorm:"default:'partner'"` // headline, gold, partner
	SortOrder  int       `json:"sort_order" gorm:"column:sort_order;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
