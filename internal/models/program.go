package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Program is a training calendar: an ordered cycle of days, each optionally
// pointing at a routine (nil routine = rest day).
type Program struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string         `gorm:"size:120;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	CycleDays   int            `gorm:"not null;default:7" json:"cycle_days"`
	Days        []ProgramDay   `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"days"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type ProgramDay struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProgramID uuid.UUID  `gorm:"type:uuid;not null;index" json:"program_id"`
	DayIndex  int        `gorm:"not null" json:"day_index"` // 0-based position in the cycle
	RoutineID *uuid.UUID `gorm:"type:uuid" json:"routine_id,omitempty"`
	Label     string     `gorm:"size:120" json:"label,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserProgram marks a program as started; the current day is derived from
// StartedAt and the cycle length, never stored.
type UserProgram struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProgramID uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	StartedAt time.Time `gorm:"not null" json:"started_at"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Program   Program   `gorm:"foreignKey:ProgramID" json:"-"`
}
