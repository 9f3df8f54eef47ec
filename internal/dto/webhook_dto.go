package dto

// RevenueCatWebhook is the envelope RevenueCat posts to the webhook endpoint.
type RevenueCatWebhook struct {
	APIVersion string          `json:"api_version"`
	Event      RevenueCatEvent `json:"event"`
}

type RevenueCatEvent struct {
	Type                     string   `json:"type"`
	ID                       string   `json:"id"`
	AppUserID                string   `json:"app_user_id"`
	ProductID                string   `json:"product_id"`
	NewProductID             string   `json:"new_product_id"`
	EntitlementIDs           []string `json:"entitlement_ids"`
	PeriodType               string   `json:"period_type"`
	PurchasedAtMs            int64    `json:"purchased_at_ms"`
	ExpirationAtMs           int64    `json:"expiration_at_ms"`
	Environment              string   `json:"environment"`
	Store                    string   `json:"store"`
	OriginalAppUserID        string   `json:"original_app_user_id"`
	TransactionID            string   `json:"transaction_id"`
	OriginalTransactionID    string   `json:"original_transaction_id"`
	IsTrialConversion        bool     `json:"is_trial_conversion"`
	CancelReason             string   `json:"cancel_reason"`
	CountryCode              string   `json:"country_code"`
	Currency                 string   `json:"currency"`
	Price                    float64  `json:"price"`
	PriceInPurchasedCurrency float64  `json:"price_in_purchased_currency"`
}

// PayPalWebhook is PayPal's event envelope. Resource is provider-polymorphic:
// a sale for payment events, a subscription for lifecycle events.
type PayPalWebhook struct {
	ID           string         `json:"id"`
	EventType    string         `json:"event_type"`
	CreateTime   string         `json:"create_time"`
	ResourceType string         `json:"resource_type"`
	Summary      string         `json:"summary"`
	Resource     PayPalResource `json:"resource"`
}

type PayPalResource struct {
	ID                 string             `json:"id"`
	State              string             `json:"state"`
	Status             string             `json:"status"`
	PlanID             string             `json:"plan_id"`
	BillingAgreementID string             `json:"billing_agreement_id"`
	CustomID           string             `json:"custom_id"`
	StatusChangeNote   string             `json:"status_change_note"`
	Amount             *PayPalAmount      `json:"amount,omitempty"`
	BillingInfo        *PayPalBillingInfo `json:"billing_info,omitempty"`
}

type PayPalAmount struct {
	Total        string `json:"total"`
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

type PayPalBillingInfo struct {
	NextBillingTime string         `json:"next_billing_time"`
	LastPayment     *PayPalPayment `json:"last_payment,omitempty"`
}

type PayPalPayment struct {
	Amount *PayPalAmount `json:"amount,omitempty"`
	Time   string        `json:"time"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
