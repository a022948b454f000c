package models

import (
	"time"
)

// Tournament is the authoritative record for a youth football tournament.
// EntryFee is the only price the checkout flow trusts — client-supplied amounts
// are never used.
type Tournament struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Slug         string    `json:"slug" gorm:"uniqueIndex"`
	Description  string    `json:"description" gorm:"type:text"`
	Location     string    `json:"location"`
	AgeGroups    string    `json:"age_groups"` // comma-separated, e.g. "U9,U11,U13"
	EntryFee     float64   `json:"entry_fee" gorm:"default:0"`
	MaxTeams     int       `json:"max_teams" gorm:"default:0"`
	Status       string    `json:"status" gorm:"default:'upcoming'"` // upcoming, ongoing, completed
	StartDate    time.Time `json:"start_date" gorm:"not null"`
	EndDate      time.Time `json:"end_date"`
	IsFeatured   bool      `json:"is_featured" gorm:"default:false"`
	MainPhotoURL string    `json:"main_photo_url"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Photos        []TournamentPhoto `json:"photos,omitempty" gorm:"foreignKey:TournamentID"`
	Registrations []Registration    `json:"registrations,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	RegisteredCount int64 `json:"registered_count,omitempty" gorm:"-"`
	AvailableSlots  int64 `json:"available_slots,omitempty" gorm:"-"`
}

type TournamentPhoto struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournament_id" gorm:"not null;index"`
	URL          string `json:"url"`
	SortOrder    int    `json:"sort_order" gorm:"column:sort_order;default:0"`
}

// MiniTournament is the brief listing shape for the public tournaments page.
type MiniTournament struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Status          string    `json:"status"`
	Location        string    `json:"location"`
	AgeGroups       string    `json:"age_groups"`
	EntryFee        float64   `json:"entry_fee"`
	MaxTeams        int       `json:"max_teams"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsFeatured      bool      `json:"is_featured"`
	MainPhotoURL    string    `json:"main_photo_url"`
	RegisteredCount int64     `json:"registered_count"`
}
