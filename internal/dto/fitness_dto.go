package dto

import (
	"time"

	"github.com/google/uuid"
)

type RoutineExerciseInput struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	RestSeconds int    `json:"rest_seconds"`
}

type CreateRoutineRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Exercises   []RoutineExerciseInput `json:"exercises"`
}

type UpdateRoutineRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Exercises   []RoutineExerciseInput `json:"exercises,omitempty"`
}

type WorkoutSetInput struct {
	ExerciseName string  `json:"exercise_name"`
	SetNumber    int     `json:"set_number"`
	WeightKg     float64 `json:"weight_kg"`
	Reps         int     `json:"reps"`
}

type LogWorkoutRequest struct {
	RoutineID       *uuid.UUID        `json:"routine_id,omitempty"`
	DurationSeconds int               `json:"duration_seconds"`
	Notes           string            `json:"notes,omitempty"`
	PerformedAt     *time.Time        `json:"performed_at,omitempty"`
	Sets            []WorkoutSetInput `json:"sets"`
}

type WorkoutStatsResponse struct {
	TotalWorkouts  int64   `json:"total_workouts"`
	TotalSets      int64   `json:"total_sets"`
	TotalDurationS int64   `json:"total_duration_seconds"`
	AvgDurationS   float64 `json:"avg_duration_seconds"`
}

type StreakResponse struct {
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	TotalWorkouts  int       `json:"total_workouts"`
	LastWorkoutDay time.Time `json:"last_workout_day"`
}

type ProgramDayInput struct {
	DayIndex  int        `json:"day_index"`
	RoutineID *uuid.UUID `json:"routine_id,omitempty"`
	Label     string     `json:"label,omitempty"`
}

type CreateProgramRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	CycleDays   int               `json:"cycle_days"`
	Days        []ProgramDayInput `json:"days"`
}

type StartProgramRequest struct {
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type CurrentProgramDayResponse struct {
	ProgramID   uuid.UUID  `json:"program_id"`
	ProgramName string     `json:"program_name"`
	StartedAt   time.Time  `json:"started_at"`
	DayIndex    int        `json:"day_index"`
	DayNumber   int        `json:"day_number"` // 1-based, for display
	RoutineID   *uuid.UUID `json:"routine_id,omitempty"`
	Label       string     `json:"label,omitempty"`
	RestDay     bool       `json:"rest_day"`
}
