package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodLogEntry is one logged meal, usually produced by the photo analyzer.
type FoodLogEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	ImageURL    string    `gorm:"size:500" json:"image_url,omitempty"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	ServingSize string    `gorm:"size:100" json:"serving_size,omitempty"`
	AISource    string    `gorm:"size:40" json:"ai_source,omitempty"` // provider model or "estimate"
	LoggedAt    time.Time `gorm:"not null;index" json:"logged_at"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
}
