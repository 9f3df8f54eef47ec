package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PayPalWebhookVerifier verifies a webhook delivery's transmission signature.
type PayPalWebhookVerifier interface {
	VerifyWebhookSignature(h services.WebhookVerifyHeaders, rawEvent []byte) bool
}

type WebhookHandler struct {
	subscriptionService *services.SubscriptionService
	verifier            PayPalWebhookVerifier
	cfg                 *config.Config
}

func NewWebhookHandler(subscriptionService *services.SubscriptionService, verifier PayPalWebhookVerifier, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		verifier:            verifier,
		cfg:                 cfg,
	}
}

// HandlePayPal processes PayPal billing webhooks. An unverifiable signature
// is rejected with 401, but once the delivery is authentic we always answer
// 200: PayPal retries aggressively on non-2xx and a processing bug would
// otherwise flood the log with redeliveries that keep failing the same way.
func (h *WebhookHandler) HandlePayPal(c *fiber.Ctx) error {
	rawBody := c.Body()

	headers := services.WebhookVerifyHeaders{
		TransmissionID:   c.Get("Paypal-Transmission-Id"),
		TransmissionTime: c.Get("Paypal-Transmission-Time"),
		TransmissionSig:  c.Get("Paypal-Transmission-Sig"),
		CertURL:          c.Get("Paypal-Cert-Url"),
		AuthAlgo:         c.Get("Paypal-Auth-Algo"),
	}

	if !h.verifier.VerifyWebhookSignature(headers, rawBody) {
		slog.Warn("paypal webhook rejected: signature verification failed",
			"transmission_id", headers.TransmissionID)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook signature verification failed",
		})
	}

	var webhook dto.PayPalWebhook
	if err := c.BodyParser(&webhook); err != nil || webhook.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	ev := services.BillingEventFromPayPal(&webhook)

	already, err := h.subscriptionService.ProcessWebhookEvent(ev, rawBody)
	if err != nil {
		slog.Error("paypal webhook processing failed",
			"event_id", webhook.ID, "event_type", webhook.EventType, "error", err)
		return c.JSON(dto.WebhookResponse{Success: false, Message: "Event received but processing failed"})
	}
	if already {
		return c.JSON(dto.WebhookResponse{Success: true, Message: "Event already processed"})
	}

	slog.Info("paypal webhook processed", "event_id", webhook.ID, "event_type", webhook.EventType)
	return c.JSON(dto.WebhookResponse{Success: true, Message: "Event processed"})
}

// HandleRevenueCat processes RevenueCat webhooks behind a shared-secret
// Authorization header. Unlike PayPal, processing failures return 500 so
// RevenueCat redelivers the event.
func (h *WebhookHandler) HandleRevenueCat(c *fiber.Ctx) error {
	expectedAuth := h.cfg.RevenueCatWebhookAuth
	if expectedAuth == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(expectedAuth)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var webhook dto.RevenueCatWebhook
	if err := c.BodyParser(&webhook); err != nil || webhook.Event.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	ev := services.BillingEventFromRevenueCat(&webhook.Event)

	already, err := h.subscriptionService.ProcessWebhookEvent(ev, c.Body())
	if err != nil {
		slog.Error("revenuecat webhook processing failed",
			"event_id", webhook.Event.ID, "event_type", webhook.Event.Type, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}
	if already {
		return c.JSON(dto.WebhookResponse{Success: true, Message: "Event already processed"})
	}

	slog.Info("revenuecat webhook processed", "event_id", webhook.Event.ID, "event_type", webhook.Event.Type)
	return c.JSON(dto.WebhookResponse{Success: true, Message: "Event processed"})
}
