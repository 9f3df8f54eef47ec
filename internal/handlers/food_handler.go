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

type FoodHandler struct {
	foodService *services.FoodService
}

func NewFoodHandler(foodService *services.FoodService) *FoodHandler {
	return &FoodHandler{foodService: foodService}
}

func (h *FoodHandler) Analyze(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.AnalyzeFoodRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.foodService.Analyze(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrScanLimitReached) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Daily scan limit reached. Upgrade to premium for unlimited scans.",
			})
		}
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *FoodHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}

	entries, err := h.foodService.List(userID, from, to)
	if err != nil {
		return internalError(c, "Failed to list food entries")
	}
	return c.JSON(entries)
}

func (h *FoodHandler) DailyTotals(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	day := time.Now()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "Invalid date, expected YYYY-MM-DD")
		}
		day = t
	}

	totals, err := h.foodService.DailyTotals(userID, day)
	if err != nil {
		return internalError(c, "Failed to compute daily totals")
	}
	return c.JSON(totals)
}

func (h *FoodHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid entry id")
	}

	if err := h.foodService.Delete(userID, entryID); err != nil {
		if errors.Is(err, services.ErrFoodEntryNotFound) {
			return notFound(c, "Food entry not found")
		}
		return internalError(c, "Failed to delete food entry")
	}
	return c.JSON(fiber.Map{"message": "Food entry deleted"})
}
