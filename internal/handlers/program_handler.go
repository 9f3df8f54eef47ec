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

type ProgramHandler struct {
	programService *services.ProgramService
}

func NewProgramHandler(programService *services.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

func (h *ProgramHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	program, err := h.programService.Create(userID, &req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(program)
}

func (h *ProgramHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	programs, err := h.programService.List(userID)
	if err != nil {
		return internalError(c, "Failed to list programs")
	}
	return c.JSON(programs)
}

func (h *ProgramHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	programID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid program id")
	}

	program, err := h.programService.Get(userID, programID)
	if err != nil {
		return notFound(c, "Program not found")
	}
	return c.JSON(program)
}

func (h *ProgramHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	programID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid program id")
	}

	if err := h.programService.Delete(userID, programID); err != nil {
		if errors.Is(err, services.ErrProgramNotFound) {
			return notFound(c, "Program not found")
		}
		return internalError(c, "Failed to delete program")
	}
	return c.JSON(fiber.Map{"message": "Program deleted"})
}

func (h *ProgramHandler) Start(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	programID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid program id")
	}

	var req dto.StartProgramRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid request body")
	}

	up, err := h.programService.Start(userID, programID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProgramNotFound) {
			return notFound(c, "Program not found")
		}
		return internalError(c, "Failed to start program")
	}
	return c.Status(fiber.StatusCreated).JSON(up)
}

func (h *ProgramHandler) Stop(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.programService.Stop(userID); err != nil {
		if errors.Is(err, services.ErrNoActiveProgram) {
			return notFound(c, "No active program")
		}
		return internalError(c, "Failed to stop program")
	}
	return c.JSON(fiber.Map{"message": "Program stopped"})
}

func (h *ProgramHandler) Today(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	day, err := h.programService.CurrentDay(userID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveProgram) {
			return notFound(c, "No active program")
		}
		return internalError(c, "Failed to resolve program day")
	}
	return c.JSON(day)
}
