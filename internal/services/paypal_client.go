package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
)

// PayPalClient talks to PayPal's REST API: OAuth client-credentials token
// exchange, webhook signature verification, and subscription/plan lookups.
type PayPalClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewPayPalClient(cfg *config.Config) *PayPalClient {
	return &PayPalClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WebhookVerifyHeaders are the transport headers PayPal signs each webhook
// delivery with.
type WebhookVerifyHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

func (h WebhookVerifyHeaders) complete() bool {
	return h.TransmissionID != "" && h.TransmissionTime != "" &&
		h.TransmissionSig != "" && h.CertURL != "" && h.AuthAlgo != ""
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalVerifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// PayPalSubscription is the subset of PayPal's subscription resource the
// verification endpoint needs.
type PayPalSubscription struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlanID      string `json:"plan_id"`
	StartTime   string `json:"start_time"`
	BillingInfo struct {
		NextBillingTime string `json:"next_billing_time"`
		LastPayment     struct {
			Amount struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"amount"`
			Time string `json:"time"`
		} `json:"last_payment"`
	} `json:"billing_info"`
}

// PayPalPlan carries the billing-cycle metadata used to resolve a tier.
type PayPalPlan struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	BillingCycles []struct {
		TenureType string `json:"tenure_type"` // TRIAL or REGULAR
		Frequency  struct {
			IntervalUnit  string `json:"interval_unit"` // DAY, WEEK, MONTH, YEAR
			IntervalCount int    `json:"interval_count"`
		} `json:"frequency"`
		PricingScheme struct {
			FixedPrice struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"fixed_price"`
		} `json:"pricing_scheme"`
	} `json:"billing_cycles"`
}

func (p *PayPalClient) getAccessToken() (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequest(http.MethodPost, p.cfg.PayPalAPIBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.PayPalClientID, p.cfg.PayPalClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token exchange: status %d: %s", resp.StatusCode, string(body))
	}

	var tok paypalTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("paypal token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal token exchange: empty access token")
	}
	return tok.AccessToken, nil
}

// VerifyWebhookSignature returns the authenticity verdict for one webhook
// delivery. Missing headers, a failed token exchange, and a non-SUCCESS
// verdict all yield false; the caller responds 401 without touching state.
func (p *PayPalClient) VerifyWebhookSignature(h WebhookVerifyHeaders, rawEvent []byte) bool {
	if p.cfg.SkipPayPalValidation {
		slog.Warn("PAYPAL WEBHOOK SIGNATURE VALIDATION IS DISABLED, do not run this in production")
		return true
	}

	if !h.complete() {
		slog.Warn("paypal webhook missing signature headers")
		return false
	}

	token, err := p.getAccessToken()
	if err != nil {
		slog.Error("paypal webhook verification token exchange failed", "error", err)
		return false
	}

	payload := map[string]interface{}{
		"transmission_id":   h.TransmissionID,
		"transmission_time": h.TransmissionTime,
		"transmission_sig":  h.TransmissionSig,
		"cert_url":          h.CertURL,
		"auth_algo":         h.AuthAlgo,
		"webhook_id":        p.cfg.PayPalWebhookID,
		"webhook_event":     json.RawMessage(rawEvent),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("paypal webhook verification marshal failed", "error", err)
		return false
	}

	req, err := http.NewRequest(http.MethodPost, p.cfg.PayPalAPIBase+"/v1/notifications/verify-webhook-signature", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Error("paypal webhook verification call failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	var verdict paypalVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		slog.Error("paypal webhook verification decode failed", "error", err)
		return false
	}

	return verdict.VerificationStatus == "SUCCESS"
}

// GetSubscription fetches live subscription state directly from PayPal.
func (p *PayPalClient) GetSubscription(subscriptionID string) (*PayPalSubscription, error) {
	var sub PayPalSubscription
	if err := p.getJSON("/v1/billing/subscriptions/"+subscriptionID, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetPlan fetches a billing plan, used to resolve the tier from its cycle.
func (p *PayPalClient) GetPlan(planID string) (*PayPalPlan, error) {
	var plan PayPalPlan
	if err := p.getJSON("/v1/billing/plans/"+planID, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *PayPalClient) getJSON(path string, out interface{}) error {
	token, err := p.getAccessToken()
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, p.cfg.PayPalAPIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal api %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal api %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
