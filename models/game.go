package models

import (
	"time"
)

// Game is a single fixture within a tournament. Scores are updated live by staff
// from the admin dashboard during match days.
type Game struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index"`
	HomeTeam     string    `json:"home_team" gorm:"not null"`
	AwayTeam     string    `json:"away_team" gorm:"not null"`
	HomeScore    int       `json:"home_score" gorm:"default:0"`
	AwayScore    int       `json:"away_score" gorm:"default:0"`
	Status       string    `json:"status" gorm:"default:'scheduled'"` // scheduled, live, finished
	AgeGroup     string    `json:"age_group"`
	Pitch        string    `json:"pitch"`
	KickoffAt    time.Time `json:"kickoff_at"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
