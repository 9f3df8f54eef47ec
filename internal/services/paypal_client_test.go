package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paypalTestServer(t *testing.T, verificationStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client-id" || pass != "client-secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "test-token",
				"token_type":   "Bearer",
				"expires_in":   32400,
			})
		case "/v1/notifications/verify-webhook-signature":
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "wh-id-1", payload["webhook_id"])
			json.NewEncoder(w).Encode(map[string]string{"verification_status": verificationStatus})
		case "/v1/billing/subscriptions/I-TEST":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "I-TEST",
				"status":  "ACTIVE",
				"plan_id": "P-PLAN1",
			})
		case "/v1/billing/plans/P-PLAN1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "P-PLAN1",
				"billing_cycles": []map[string]interface{}{
					{
						"tenure_type": "REGULAR",
						"frequency":   map[string]interface{}{"interval_unit": "YEAR", "interval_count": 1},
						"pricing_scheme": map[string]interface{}{
							"fixed_price": map[string]string{"value": "59.99", "currency_code": "USD"},
						},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func paypalTestConfig(apiBase string) *config.Config {
	return &config.Config{
		PayPalClientID:     "client-id",
		PayPalClientSecret: "client-secret",
		PayPalAPIBase:      apiBase,
		PayPalWebhookID:    "wh-id-1",
	}
}

func fullHeaders() WebhookVerifyHeaders {
	return WebhookVerifyHeaders{
		TransmissionID:   "tid",
		TransmissionTime: "2026-03-01T00:00:00Z",
		TransmissionSig:  "sig",
		CertURL:          "https://api.paypal.com/cert",
		AuthAlgo:         "SHA256withRSA",
	}
}

func TestVerifyWebhookSignature_Success(t *testing.T) {
	srv := paypalTestServer(t, "SUCCESS")
	defer srv.Close()

	client := NewPayPalClient(paypalTestConfig(srv.URL))

	assert.True(t, client.VerifyWebhookSignature(fullHeaders(), []byte(`{"id":"WH-1"}`)))
}

func TestVerifyWebhookSignature_Failure(t *testing.T) {
	srv := paypalTestServer(t, "FAILURE")
	defer srv.Close()

	client := NewPayPalClient(paypalTestConfig(srv.URL))

	assert.False(t, client.VerifyWebhookSignature(fullHeaders(), []byte(`{"id":"WH-1"}`)))
}

func TestVerifyWebhookSignature_MissingHeaders(t *testing.T) {
	srv := paypalTestServer(t, "SUCCESS")
	defer srv.Close()

	client := NewPayPalClient(paypalTestConfig(srv.URL))

	h := fullHeaders()
	h.TransmissionSig = ""
	assert.False(t, client.VerifyWebhookSignature(h, []byte(`{}`)))
}

func TestVerifyWebhookSignature_TokenExchangeFails(t *testing.T) {
	srv := paypalTestServer(t, "SUCCESS")
	defer srv.Close()

	cfg := paypalTestConfig(srv.URL)
	cfg.PayPalClientSecret = "wrong"
	client := NewPayPalClient(cfg)

	assert.False(t, client.VerifyWebhookSignature(fullHeaders(), []byte(`{}`)))
}

func TestVerifyWebhookSignature_SkipFlag(t *testing.T) {
	cfg := paypalTestConfig("http://127.0.0.1:1") // unreachable on purpose
	cfg.SkipPayPalValidation = true
	client := NewPayPalClient(cfg)

	assert.True(t, client.VerifyWebhookSignature(WebhookVerifyHeaders{}, []byte(`{}`)))
}

func TestGetSubscriptionAndPlan(t *testing.T) {
	srv := paypalTestServer(t, "SUCCESS")
	defer srv.Close()

	client := NewPayPalClient(paypalTestConfig(srv.URL))

	sub, err := client.GetSubscription("I-TEST")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", sub.Status)
	assert.Equal(t, "P-PLAN1", sub.PlanID)

	plan, err := client.GetPlan(sub.PlanID)
	require.NoError(t, err)
	require.Len(t, plan.BillingCycles, 1)
	assert.Equal(t, "YEAR", plan.BillingCycles[0].Frequency.IntervalUnit)
	assert.Equal(t, "59.99", plan.BillingCycles[0].PricingScheme.FixedPrice.Value)
}
