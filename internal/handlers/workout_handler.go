package handlers

import (
	"errors"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/middleware"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WorkoutHandler struct {
	workoutService *services.WorkoutService
}

func NewWorkoutHandler(workoutService *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

func (h *WorkoutHandler) Log(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.LogWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	log, err := h.workoutService.Log(userID, &req)
	if err != nil {
		return internalError(c, "Failed to log workout")
	}
	return c.Status(fiber.StatusCreated).JSON(log)
}

func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	logs, err := h.workoutService.List(userID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return internalError(c, "Failed to list workouts")
	}
	return c.JSON(logs)
}

func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid workout id")
	}

	log, err := h.workoutService.Get(userID, logID)
	if err != nil {
		return notFound(c, "Workout not found")
	}
	return c.JSON(log)
}

func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid workout id")
	}

	if err := h.workoutService.Delete(userID, logID); err != nil {
		if errors.Is(err, services.ErrWorkoutNotFound) {
			return notFound(c, "Workout not found")
		}
		return internalError(c, "Failed to delete workout")
	}
	return c.JSON(fiber.Map{"message": "Workout deleted"})
}

func (h *WorkoutHandler) Stats(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	days := c.QueryInt("days", 30)
	if days < 1 || days > 365 {
		days = 30
	}

	stats, err := h.workoutService.Stats(userID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return internalError(c, "Failed to compute stats")
	}
	return c.JSON(stats)
}

func (h *WorkoutHandler) Streak(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	streak, err := h.workoutService.Streak(userID)
	if err != nil {
		return internalError(c, "Failed to load streak")
	}
	return c.JSON(streak)
}
