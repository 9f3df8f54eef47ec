package handlers

import (
	"errors"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/middleware"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RoutineHandler struct {
	routineService *services.RoutineService
}

func NewRoutineHandler(routineService *services.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

func (h *RoutineHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateRoutineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	routine, err := h.routineService.Create(userID, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

func (h *RoutineHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	routines, err := h.routineService.List(userID)
	if err != nil {
		return internalError(c, "Failed to list routines")
	}
	return c.JSON(routines)
}

func (h *RoutineHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	routineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid routine id")
	}

	routine, err := h.routineService.Get(userID, routineID)
	if err != nil {
		return notFound(c, "Routine not found")
	}
	return c.JSON(routine)
}

func (h *RoutineHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	routineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid routine id")
	}

	var req dto.UpdateRoutineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	routine, err := h.routineService.Update(userID, routineID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRoutineNotFound) {
			return notFound(c, "Routine not found")
		}
		return internalError(c, "Failed to update routine")
	}
	return c.JSON(routine)
}

func (h *RoutineHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	routineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid routine id")
	}

	if err := h.routineService.Delete(userID, routineID); err != nil {
		if errors.Is(err, services.ErrRoutineNotFound) {
			return notFound(c, "Routine not found")
		}
		return internalError(c, "Failed to delete routine")
	}
	return c.JSON(fiber.Map{"message": "Routine deleted"})
}

// shared response helpers

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}
