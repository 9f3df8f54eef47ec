package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type WorkoutService struct {
	db *gorm.DB
}

func NewWorkoutService(db *gorm.DB) *WorkoutService {
	return &WorkoutService{db: db}
}

func (s *WorkoutService) Log(userID uuid.UUID, req *dto.LogWorkoutRequest) (*models.WorkoutLog, error) {
	performedAt := time.Now()
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}

	log := models.WorkoutLog{
		ID:              uuid.New(),
		UserID:          userID,
		RoutineID:       req.RoutineID,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
		PerformedAt:     performedAt,
	}

	if req.RoutineID != nil {
		var routine models.Routine
		if err := s.db.Where("id = ? AND user_id = ?", *req.RoutineID, userID).First(&routine).Error; err == nil {
			log.RoutineName = routine.Name
		}
	}

	for _, set := range req.Sets {
		log.Sets = append(log.Sets, models.WorkoutSetLog{
			ID:           uuid.New(),
			ExerciseName: set.ExerciseName,
			SetNumber:    set.SetNumber,
			WeightKg:     set.WeightKg,
			Reps:         set.Reps,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		return s.advanceStreak(tx, userID, performedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log workout: %w", err)
	}
	return &log, nil
}

func (s *WorkoutService) List(userID uuid.UUID, limit, offset int) ([]models.WorkoutLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []models.WorkoutLog
	err := s.db.Preload("Sets").
		Where("user_id = ?", userID).
		Order("performed_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (s *WorkoutService) Get(userID, logID uuid.UUID) (*models.WorkoutLog, error) {
	var log models.WorkoutLog
	err := s.db.Preload("Sets").Where("id = ? AND user_id = ?", logID, userID).First(&log).Error
	if err != nil {
		return nil, ErrWorkoutNotFound
	}
	return &log, nil
}

func (s *WorkoutService) Delete(userID, logID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", logID, userID).Delete(&models.WorkoutLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (s *WorkoutService) Stats(userID uuid.UUID, since time.Time) (*dto.WorkoutStatsResponse, error) {
	var stats dto.WorkoutStatsResponse

	row := s.db.Model(&models.WorkoutLog{}).
		Select("COUNT(*) AS total, COALESCE(SUM(duration_seconds), 0) AS duration").
		Where("user_id = ? AND performed_at >= ?", userID, since).
		Row()
	if err := row.Scan(&stats.TotalWorkouts, &stats.TotalDurationS); err != nil {
		return nil, err
	}

	err := s.db.Model(&models.WorkoutSetLog{}).
		Where("workout_log_id IN (?)",
			s.db.Model(&models.WorkoutLog{}).Select("id").Where("user_id = ? AND performed_at >= ?", userID, since),
		).Count(&stats.TotalSets).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalWorkouts > 0 {
		stats.AvgDurationS = float64(stats.TotalDurationS) / float64(stats.TotalWorkouts)
	}
	return &stats, nil
}

func (s *WorkoutService) Streak(userID uuid.UUID) (*dto.StreakResponse, error) {
	var streak models.WorkoutStreak
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.StreakResponse{}, nil
		}
		return nil, err
	}
	return &dto.StreakResponse{
		CurrentStreak:  streak.CurrentStreak,
		LongestStreak:  streak.LongestStreak,
		TotalWorkouts:  streak.TotalWorkouts,
		LastWorkoutDay: streak.LastWorkoutDay,
	}, nil
}

// advanceStreak updates the consecutive-day counter: same-day workouts keep
// the streak, a next-day workout extends it, any gap resets it to 1.
func (s *WorkoutService) advanceStreak(tx *gorm.DB, userID uuid.UUID, performedAt time.Time) error {
	day := truncateToDay(performedAt)

	var streak models.WorkoutStreak
	err := tx.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.WorkoutStreak{
			ID:             uuid.New(),
			UserID:         userID,
			CurrentStreak:  1,
			LongestStreak:  1,
			TotalWorkouts:  1,
			LastWorkoutDay: day,
		}
		return tx.Create(&streak).Error
	}
	if err != nil {
		return err
	}

	streak.TotalWorkouts++
	lastDay := truncateToDay(streak.LastWorkoutDay)
	switch {
	case day.Equal(lastDay):
		// already counted today
	case day.Equal(lastDay.AddDate(0, 0, 1)):
		streak.CurrentStreak++
	case day.After(lastDay):
		streak.CurrentStreak = 1
	default:
		// backdated log, counts toward totals only
		return tx.Model(&streak).Update("total_workouts", streak.TotalWorkouts).Error
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastWorkoutDay = day

	return tx.Model(&streak).Updates(map[string]interface{}{
		"current_streak":   streak.CurrentStreak,
		"longest_streak":   streak.LongestStreak,
		"total_workouts":   streak.TotalWorkouts,
		"last_workout_day": streak.LastWorkoutDay,
	}).Error
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
