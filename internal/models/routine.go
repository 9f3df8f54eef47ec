package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Routine is a user-built workout template.
type Routine struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string            `gorm:"size:120;not null" json:"name"`
	Description string            `gorm:"size:500" json:"description,omitempty"`
	Exercises   []RoutineExercise `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE" json:"exercises"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
	User        User              `gorm:"foreignKey:UserID" json:"-"`
}

type RoutineExercise struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoutineID   uuid.UUID `gorm:"type:uuid;not null;index" json:"routine_id"`
	Position    int       `gorm:"not null" json:"position"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	MuscleGroup string    `gorm:"size:60" json:"muscle_group,omitempty"`
	Sets        int       `gorm:"default:3" json:"sets"`
	Reps        int       `gorm:"default:10" json:"reps"`
	RestSeconds int       `gorm:"default:60" json:"rest_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}
