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

var (
	ErrProgramNotFound   = errors.New("program not found")
	ErrNoActiveProgram   = errors.New("no active program")
	ErrInvalidProgramDay = errors.New("program day index out of range")
)

type ProgramService struct {
	db *gorm.DB
}

func NewProgramService(db *gorm.DB) *ProgramService {
	return &ProgramService{db: db}
}

func (s *ProgramService) Create(userID uuid.UUID, req *dto.CreateProgramRequest) (*models.Program, error) {
	if req.Name == "" {
		return nil, errors.New("program name is required")
	}
	if req.CycleDays < 1 || req.CycleDays > 90 {
		return nil, errors.New("cycle_days must be between 1 and 90")
	}

	program := models.Program{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		CycleDays:   req.CycleDays,
	}
	for _, d := range req.Days {
		if d.DayIndex < 0 || d.DayIndex >= req.CycleDays {
			return nil, ErrInvalidProgramDay
		}
		program.Days = append(program.Days, models.ProgramDay{
			ID:        uuid.New(),
			DayIndex:  d.DayIndex,
			RoutineID: d.RoutineID,
			Label:     d.Label,
		})
	}

	if err := s.db.Create(&program).Error; err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	return &program, nil
}

func (s *ProgramService) List(userID uuid.UUID) ([]models.Program, error) {
	var programs []models.Program
	err := s.db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&programs).Error
	return programs, err
}

func (s *ProgramService) Get(userID, programID uuid.UUID) (*models.Program, error) {
	var program models.Program
	err := s.db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index ASC")
	}).Where("id = ? AND user_id = ?", programID, userID).First(&program).Error
	if err != nil {
		return nil, ErrProgramNotFound
	}
	return &program, nil
}

func (s *ProgramService) Delete(userID, programID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ? AND program_id = ?", userID, programID).Delete(&models.UserProgram{})
		result := tx.Where("id = ? AND user_id = ?", programID, userID).Delete(&models.Program{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProgramNotFound
		}
		return nil
	})
}

// Start activates a program for the user, deactivating any previous one.
func (s *ProgramService) Start(userID, programID uuid.UUID, req *dto.StartProgramRequest) (*models.UserProgram, error) {
	if _, err := s.Get(userID, programID); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	if req != nil && req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	up := models.UserProgram{
		ID:        uuid.New(),
		UserID:    userID,
		ProgramID: programID,
		StartedAt: startedAt,
		Active:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserProgram{}).
			Where("user_id = ? AND active = true", userID).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&up).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start program: %w", err)
	}
	return &up, nil
}

func (s *ProgramService) Stop(userID uuid.UUID) error {
	result := s.db.Model(&models.UserProgram{}).
		Where("user_id = ? AND active = true", userID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoActiveProgram
	}
	return nil
}

// CurrentDay derives today's slot in the active program's cycle from the
// start date; the position is never stored, so it survives restarts and
// timezone drift.
func (s *ProgramService) CurrentDay(userID uuid.UUID, now time.Time) (*dto.CurrentProgramDayResponse, error) {
	var up models.UserProgram
	err := s.db.Preload("Program.Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index ASC")
	}).Preload("Program").
		Where("user_id = ? AND active = true", userID).
		First(&up).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveProgram
		}
		return nil, err
	}

	dayIndex := programDayIndex(up.StartedAt, now, up.Program.CycleDays)

	resp := &dto.CurrentProgramDayResponse{
		ProgramID:   up.ProgramID,
		ProgramName: up.Program.Name,
		StartedAt:   up.StartedAt,
		DayIndex:    dayIndex,
		DayNumber:   dayIndex + 1,
		RestDay:     true,
	}
	for _, d := range up.Program.Days {
		if d.DayIndex == dayIndex {
			resp.RoutineID = d.RoutineID
			resp.Label = d.Label
			resp.RestDay = d.RoutineID == nil
			break
		}
	}
	return resp, nil
}

// programDayIndex maps a calendar day onto the program cycle: whole days
// elapsed since the start date, modulo the cycle length. A start date in the
// future pins the index to day zero.
func programDayIndex(startedAt, now time.Time, cycleDays int) int {
	if cycleDays < 1 {
		cycleDays = 7
	}
	elapsed := int(truncateToDay(now).Sub(truncateToDay(startedAt)).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed % cycleDays
}
