package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/services"
	"github.com/gatofitnees/gatofit-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubVerifier struct {
	verdict bool
}

func (s *stubVerifier) VerifyWebhookSignature(services.WebhookVerifyHeaders, []byte) bool {
	return s.verdict
}

func setupWebhookApp(t *testing.T, verdict bool) (*fiber.App, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, cleanup := testutil.SetupTestDB(t)

	cfg := &config.Config{RevenueCatWebhookAuth: "Bearer rc-secret"}
	svc := services.NewSubscriptionService(db, cfg, nil)
	handler := NewWebhookHandler(svc, &stubVerifier{verdict: verdict}, cfg)

	app := fiber.New()
	app.Post("/api/webhooks/paypal", handler.HandlePayPal)
	app.Post("/api/webhooks/revenuecat", handler.HandleRevenueCat)

	return app, mock, cleanup
}

func postJSON(t *testing.T, app *fiber.App, path string, body []byte, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeWebhookResponse(t *testing.T, resp *http.Response) dto.WebhookResponse {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out dto.WebhookResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func rcBody(t *testing.T, eventType, eventID string, userID uuid.UUID) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"api_version": "1.0",
		"event": map[string]interface{}{
			"type":        eventType,
			"id":          eventID,
			"app_user_id": userID.String(),
			"product_id":  "gatofit_monthly",
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleRevenueCat_RejectsBadAuth(t *testing.T) {
	app, _, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	resp := postJSON(t, app, "/api/webhooks/revenuecat",
		rcBody(t, "RENEWAL", "evt-1", uuid.New()),
		map[string]string{"Authorization": "Bearer wrong"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleRevenueCat_RejectsInvalidPayload(t *testing.T) {
	app, _, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	resp := postJSON(t, app, "/api/webhooks/revenuecat",
		[]byte(`{"event": {}}`),
		map[string]string{"Authorization": "Bearer rc-secret"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRevenueCat_DuplicateDeliveryIsAcknowledged(t *testing.T) {
	app, mock, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	resp := postJSON(t, app, "/api/webhooks/revenuecat",
		rcBody(t, "RENEWAL", "evt-dup", uuid.New()),
		map[string]string{"Authorization": "Bearer rc-secret"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeWebhookResponse(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "Event already processed", out.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRevenueCat_ProcessingErrorReturns500(t *testing.T) {
	app, mock, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	resp := postJSON(t, app, "/api/webhooks/revenuecat",
		rcBody(t, "RENEWAL", "evt-err", uuid.New()),
		map[string]string{"Authorization": "Bearer rc-secret"})

	// RevenueCat retries on 5xx, so processing failures surface as 500
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePayPal_RejectsBadSignature(t *testing.T) {
	app, _, cleanup := setupWebhookApp(t, false)
	defer cleanup()

	resp := postJSON(t, app, "/api/webhooks/paypal",
		[]byte(`{"id":"WH-1","event_type":"PAYMENT.SALE.COMPLETED","resource":{}}`), nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlePayPal_ProcessingErrorStillReturns200(t *testing.T) {
	app, mock, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	body, _ := json.Marshal(map[string]interface{}{
		"id":         "WH-err",
		"event_type": "BILLING.SUBSCRIPTION.CANCELLED",
		"resource":   map[string]interface{}{"id": "I-SUB1", "custom_id": userID.String()},
	})

	resp := postJSON(t, app, "/api/webhooks/paypal", body, nil)

	// PayPal keeps redelivering on non-2xx, so internal failures are
	// acknowledged with success=false instead
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeWebhookResponse(t, resp)
	assert.False(t, out.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePayPal_UnknownSubscriptionIsAcknowledged(t *testing.T) {
	app, mock, cleanup := setupWebhookApp(t, true)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions"`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectCommit()

	body, _ := json.Marshal(map[string]interface{}{
		"id":         "WH-unknown",
		"event_type": "BILLING.SUBSCRIPTION.CANCELLED",
		"resource":   map[string]interface{}{"id": "I-GONE"},
	})

	resp := postJSON(t, app, "/api/webhooks/paypal", body, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeWebhookResponse(t, resp)
	assert.True(t, out.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}
