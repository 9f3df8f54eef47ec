package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gatofitnees/gatofit-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPayPalBilling struct {
	sub  *services.PayPalSubscription
	plan *services.PayPalPlan
	err  error
}

func (s *stubPayPalBilling) GetSubscription(string) (*services.PayPalSubscription, error) {
	return s.sub, s.err
}

func (s *stubPayPalBilling) GetPlan(string) (*services.PayPalPlan, error) {
	return s.plan, s.err
}

func setupBillingApp(t *testing.T, paypal services.PayPalBillingAPI) (*fiber.App, func()) {
	t.Helper()

	db, _, cleanup := testutil.SetupTestDB(t)

	cfg := &config.Config{MonthlyPriceUSD: 9.99, YearlyPriceUSD: 99.99}
	handler := NewBillingHandler(services.NewSubscriptionService(db, cfg, paypal))

	app := fiber.New()
	app.Post("/api/billing/verify", handler.Verify)

	return app, cleanup
}

func decodeVerifyResponse(t *testing.T, resp *http.Response) dto.VerifySubscriptionResponse {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out dto.VerifySubscriptionResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestVerify_BindsCamelCaseBody(t *testing.T) {
	paypal := &stubPayPalBilling{
		sub: &services.PayPalSubscription{ID: "I-SUB1", Status: "CANCELLED"},
	}
	app, cleanup := setupBillingApp(t, paypal)
	defer cleanup()

	body, err := json.Marshal(map[string]string{
		"subscriptionId": "I-SUB1",
		"userId":         uuid.New().String(),
	})
	require.NoError(t, err)

	resp := postJSON(t, app, "/api/billing/verify", body, nil)

	// A CANCELLED provider subscription means the request parsed and reached
	// the service; a binding failure would have returned 400 instead.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeVerifyResponse(t, resp)
	assert.False(t, out.Success)
	assert.Equal(t, services.ErrSubscriptionNotActive.Error(), out.Error)
}

func TestVerify_MissingSubscriptionID(t *testing.T) {
	app, cleanup := setupBillingApp(t, &stubPayPalBilling{})
	defer cleanup()

	body, err := json.Marshal(map[string]string{
		"userId": uuid.New().String(),
	})
	require.NoError(t, err)

	resp := postJSON(t, app, "/api/billing/verify", body, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decodeVerifyResponse(t, resp)
	assert.Equal(t, "subscriptionId is required", out.Error)
}
