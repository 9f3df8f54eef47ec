package handlers

import (
	"errors"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/middleware"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CoachHandler struct {
	coachService *services.CoachService
}

func NewCoachHandler(coachService *services.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

func (h *CoachHandler) Chat(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CoachChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.coachService.Chat(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrMessageLimitReached) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Daily message limit reached. Upgrade to premium for unlimited coaching.",
			})
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(resp)
}

func (h *CoachHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	history, err := h.coachService.History(userID, c.QueryInt("limit", 50))
	if err != nil {
		return internalError(c, "Failed to load chat history")
	}
	return c.JSON(history)
}

func (h *CoachHandler) ClearHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.coachService.ClearHistory(userID); err != nil {
		return internalError(c, "Failed to clear chat history")
	}
	return c.JSON(fiber.Map{"message": "Chat history cleared"})
}
