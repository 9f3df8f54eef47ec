package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/middleware"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BillingHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewBillingHandler(subscriptionService *services.SubscriptionService) *BillingHandler {
	return &BillingHandler{subscriptionService: subscriptionService}
}

// Verify confirms a PayPal checkout against the provider API and activates
// the subscription synchronously, so the client does not have to wait for
// the webhook to arrive.
func (h *BillingHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifySubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.VerifySubscriptionResponse{
			Success: false, Error: "Invalid request body",
		})
	}
	if req.SubscriptionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.VerifySubscriptionResponse{
			Success: false, Error: "subscriptionId is required",
		})
	}

	userID, err := middleware.UserID(c)
	if err != nil {
		// fall back to the body for server-to-server callers
		userID, err = uuid.Parse(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.VerifySubscriptionResponse{
				Success: false, Error: "userId is required",
			})
		}
	}

	sub, err := h.subscriptionService.VerifyCheckout(req.SubscriptionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanChangeWhileActive):
			return c.JSON(dto.VerifySubscriptionResponse{Success: false, Error: err.Error()})
		case errors.Is(err, services.ErrSubscriptionNotActive):
			return c.JSON(dto.VerifySubscriptionResponse{Success: false, Error: err.Error()})
		}
		slog.Error("subscription verification failed",
			"subscription_id", req.SubscriptionID, "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.VerifySubscriptionResponse{
			Success: false, Error: "Verification failed",
		})
	}

	return c.JSON(dto.VerifySubscriptionResponse{
		Success: true,
		Subscription: &dto.SubscriptionResponse{
			ID:        sub.ID,
			Status:    string(sub.Status),
			PlanType:  string(sub.PlanType),
			ExpiresAt: sub.ExpiresAt,
		},
	})
}

// GetStatus returns the caller's subscription row, or the free defaults when
// none exists yet.
func (h *BillingHandler) GetStatus(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	sub, err := h.subscriptionService.GetForUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.JSON(fiber.Map{
				"plan_type":  "free",
				"status":     "expired",
				"is_premium": false,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load subscription",
		})
	}

	return c.JSON(fiber.Map{
		"plan_type":    sub.PlanType,
		"status":       sub.Status,
		"expires_at":   sub.ExpiresAt,
		"auto_renewal": sub.AutoRenewal,
		"is_premium":   sub.IsPremium(time.Now()),
	})
}
