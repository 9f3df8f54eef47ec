package services

import (
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
)

// revenueCatKinds reduces RevenueCat's event vocabulary to EventKind. Types
// not listed here are informational (TRANSFER, SUBSCRIBER_ALIAS, TEST).
var revenueCatKinds = map[string]EventKind{
	"INITIAL_PURCHASE":      EventPaymentCompleted,
	"RENEWAL":               EventPaymentCompleted,
	"NON_RENEWING_PURCHASE": EventPaymentCompleted,
	"PRODUCT_CHANGE":        EventPlanChanged,
	"CANCELLATION":          EventCancelled,
	"UNCANCELLATION":        EventActivated,
	"EXPIRATION":            EventExpired,
	"BILLING_ISSUE":         EventPaymentFailed,
	"SUBSCRIPTION_PAUSED":   EventSuspended,
}

// BillingEventFromRevenueCat normalizes a RevenueCat webhook event.
// app_user_id carries our user UUID.
func BillingEventFromRevenueCat(ev *dto.RevenueCatEvent) *BillingEvent {
	kind, ok := revenueCatKinds[ev.Type]
	if !ok {
		kind = EventInformational
	}

	userID, _ := uuid.Parse(ev.AppUserID)

	productID := ev.ProductID
	if kind == EventPlanChanged && ev.NewProductID != "" {
		productID = ev.NewProductID
	}

	be := &BillingEvent{
		Kind:          kind,
		Provider:      "revenuecat",
		EventID:       ev.ID,
		EventType:     ev.Type,
		UserID:        userID,
		ProductID:     productID,
		TransactionID: ev.OriginalTransactionID,
		Reason:        ev.CancelReason,
		Price:         ev.Price,
	}

	if productID != "" && (kind == EventPaymentCompleted || kind == EventPlanChanged) {
		be.PlanType = PlanForProduct(productID)
	}

	if ev.ExpirationAtMs > 0 {
		t := msToTime(ev.ExpirationAtMs)
		be.ExpiresAt = &t
		if ev.PurchasedAtMs > 0 && ev.ExpirationAtMs > ev.PurchasedAtMs {
			be.PlanDuration = t.Sub(msToTime(ev.PurchasedAtMs))
		}
	}

	return be
}

// payPalKinds reduces PayPal's event vocabulary to EventKind.
var payPalKinds = map[string]EventKind{
	"PAYMENT.SALE.COMPLETED":              EventPaymentCompleted,
	"BILLING.SUBSCRIPTION.CANCELLED":      EventCancelled,
	"BILLING.SUBSCRIPTION.SUSPENDED":      EventSuspended,
	"BILLING.SUBSCRIPTION.ACTIVATED":      EventActivated,
	"BILLING.SUBSCRIPTION.RE-ACTIVATED":   EventActivated,
	"BILLING.SUBSCRIPTION.PAYMENT.FAILED": EventPaymentFailed,
	"BILLING.SUBSCRIPTION.UPDATED":        EventPlanChanged,
	"BILLING.SUBSCRIPTION.EXPIRED":        EventExpired,
}

// BillingEventFromPayPal normalizes a PayPal webhook event. Sale events
// correlate through billing_agreement_id, lifecycle events through the
// resource ID; custom_id carries our user UUID when the checkout set it.
func BillingEventFromPayPal(wh *dto.PayPalWebhook) *BillingEvent {
	kind, ok := payPalKinds[wh.EventType]
	if !ok {
		kind = EventInformational
	}

	subID := wh.Resource.BillingAgreementID
	if subID == "" {
		subID = wh.Resource.ID
	}

	userID, _ := uuid.Parse(wh.Resource.CustomID)

	be := &BillingEvent{
		Kind:           kind,
		Provider:       "paypal",
		EventID:        wh.ID,
		EventType:      wh.EventType,
		SubscriptionID: subID,
		UserID:         userID,
		Reason:         wh.Resource.StatusChangeNote,
	}

	if wh.Resource.BillingInfo != nil && wh.Resource.BillingInfo.NextBillingTime != "" {
		if t, err := time.Parse(time.RFC3339, wh.Resource.BillingInfo.NextBillingTime); err == nil {
			be.ExpiresAt = &t
		}
	}

	return be
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}

// tierForIntervalUnit maps a PayPal billing-cycle interval to a tier.
func tierForIntervalUnit(unit string) models.PlanType {
	switch unit {
	case "YEAR":
		return models.PlanYearly
	case "MONTH":
		return models.PlanMonthly
	default:
		return models.PlanMonthly
	}
}
