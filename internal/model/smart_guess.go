package model

import (
	"time"

	"daytrack-backend/internal/geo"
)

// SmartGuess associates a place with the category the user confirmed there.
type SmartGuess struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Category   Category  `gorm:"size:32;not null" json:"category"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	LastUsed   time.Time `gorm:"not null" json:"lastUsed"`
	Confidence int       `gorm:"not null" json:"confidence"`
	ErrorCount int       `gorm:"not null" json:"errorCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Coordinate returns the guess position.
func (g SmartGuess) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: g.Latitude, Longitude: g.Longitude}
}
