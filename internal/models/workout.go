package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutLog is one completed workout session.
type WorkoutLog struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	RoutineID       *uuid.UUID      `gorm:"type:uuid;index" json:"routine_id,omitempty"`
	RoutineName     string          `gorm:"size:120" json:"routine_name,omitempty"`
	DurationSeconds int             `json:"duration_seconds"`
	Notes           string          `gorm:"size:500" json:"notes,omitempty"`
	PerformedAt     time.Time       `gorm:"not null;index" json:"performed_at"`
	Sets            []WorkoutSetLog `gorm:"foreignKey:WorkoutLogID;constraint:OnDelete:CASCADE" json:"sets"`
	CreatedAt       time.Time       `json:"created_at"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
}

type WorkoutSetLog struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkoutLogID uuid.UUID `gorm:"type:uuid;not null;index" json:"workout_log_id"`
	ExerciseName string    `gorm:"size:120;not null" json:"exercise_name"`
	SetNumber    int       `gorm:"not null" json:"set_number"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	CreatedAt    time.Time `json:"created_at"`
}

// WorkoutStreak tracks consecutive training days per user.
type WorkoutStreak struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CurrentStreak  int       `gorm:"default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"default:0" json:"longest_streak"`
	TotalWorkouts  int       `gorm:"default:0" json:"total_workouts"`
	LastWorkoutDay time.Time `json:"last_workout_day"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
