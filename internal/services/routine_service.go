package services

import (
	"errors"
	"fmt"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRoutineNotFound = errors.New("routine not found")

type RoutineService struct {
	db *gorm.DB
}

func NewRoutineService(db *gorm.DB) *RoutineService {
	return &RoutineService{db: db}
}

func (s *RoutineService) Create(userID uuid.UUID, req *dto.CreateRoutineRequest) (*models.Routine, error) {
	if req.Name == "" {
		return nil, errors.New("routine name is required")
	}

	routine := models.Routine{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	for i, ex := range req.Exercises {
		routine.Exercises = append(routine.Exercises, models.RoutineExercise{
			ID:          uuid.New(),
			Position:    i,
			Name:        ex.Name,
			MuscleGroup: ex.MuscleGroup,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			RestSeconds: ex.RestSeconds,
		})
	}

	if err := s.db.Create(&routine).Error; err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}
	return &routine, nil
}

func (s *RoutineService) List(userID uuid.UUID) ([]models.Routine, error) {
	var routines []models.Routine
	err := s.db.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&routines).Error
	return routines, err
}

func (s *RoutineService) Get(userID, routineID uuid.UUID) (*models.Routine, error) {
	var routine models.Routine
	err := s.db.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error
	if err != nil {
		return nil, ErrRoutineNotFound
	}
	return &routine, nil
}

func (s *RoutineService) Update(userID, routineID uuid.UUID, req *dto.UpdateRoutineRequest) (*models.Routine, error) {
	routine, err := s.Get(userID, routineID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(routine).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Exercises != nil {
			if err := tx.Where("routine_id = ?", routine.ID).Delete(&models.RoutineExercise{}).Error; err != nil {
				return err
			}
			for i, ex := range req.Exercises {
				row := models.RoutineExercise{
					ID:          uuid.New(),
					RoutineID:   routine.ID,
					Position:    i,
					Name:        ex.Name,
					MuscleGroup: ex.MuscleGroup,
					Sets:        ex.Sets,
					Reps:        ex.Reps,
					RestSeconds: ex.RestSeconds,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update routine: %w", err)
	}

	return s.Get(userID, routineID)
}

func (s *RoutineService) Delete(userID, routineID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", routineID, userID).Delete(&models.Routine{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoutineNotFound
	}
	return nil
}
