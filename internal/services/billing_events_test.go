package services

import (
	"testing"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingEventFromRevenueCat_Renewal(t *testing.T) {
	userID := uuid.New()
	purchased := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	expires := purchased.Add(31 * 24 * time.Hour)

	ev := BillingEventFromRevenueCat(&dto.RevenueCatEvent{
		Type:                  "RENEWAL",
		ID:                    "evt-123",
		AppUserID:             userID.String(),
		ProductID:             "gatofit_monthly",
		PurchasedAtMs:         purchased.UnixMilli(),
		ExpirationAtMs:        expires.UnixMilli(),
		OriginalTransactionID: "txn-1",
		Price:                 9.99,
	})

	assert.Equal(t, EventPaymentCompleted, ev.Kind)
	assert.Equal(t, "revenuecat", ev.Provider)
	assert.Equal(t, "evt-123", ev.EventID)
	assert.Equal(t, userID, ev.UserID)
	assert.Equal(t, models.PlanMonthly, ev.PlanType)
	assert.Equal(t, 31*24*time.Hour, ev.PlanDuration)
	require.NotNil(t, ev.ExpiresAt)
	assert.Equal(t, expires.Unix(), ev.ExpiresAt.Unix())
}

func TestBillingEventFromRevenueCat_ProductChangeUsesNewProduct(t *testing.T) {
	ev := BillingEventFromRevenueCat(&dto.RevenueCatEvent{
		Type:         "PRODUCT_CHANGE",
		ID:           "evt-456",
		ProductID:    "gatofit_monthly",
		NewProductID: "gatofit_yearly",
	})

	assert.Equal(t, EventPlanChanged, ev.Kind)
	assert.Equal(t, "gatofit_yearly", ev.ProductID)
	assert.Equal(t, models.PlanYearly, ev.PlanType)
}

func TestBillingEventFromRevenueCat_UnknownTypeIsInformational(t *testing.T) {
	ev := BillingEventFromRevenueCat(&dto.RevenueCatEvent{
		Type: "TRANSFER",
		ID:   "evt-789",
	})

	assert.Equal(t, EventInformational, ev.Kind)
}

func TestBillingEventFromRevenueCat_CancellationCarriesReason(t *testing.T) {
	ev := BillingEventFromRevenueCat(&dto.RevenueCatEvent{
		Type:         "CANCELLATION",
		ID:           "evt-c1",
		CancelReason: "UNSUBSCRIBE",
	})

	assert.Equal(t, EventCancelled, ev.Kind)
	assert.Equal(t, "UNSUBSCRIBE", ev.Reason)
}

func TestBillingEventFromPayPal_SaleCorrelatesByBillingAgreement(t *testing.T) {
	userID := uuid.New()

	ev := BillingEventFromPayPal(&dto.PayPalWebhook{
		ID:        "WH-1",
		EventType: "PAYMENT.SALE.COMPLETED",
		Resource: dto.PayPalResource{
			ID:                 "SALE-9",
			BillingAgreementID: "I-SUB123",
			CustomID:           userID.String(),
		},
	})

	assert.Equal(t, EventPaymentCompleted, ev.Kind)
	assert.Equal(t, "paypal", ev.Provider)
	assert.Equal(t, "I-SUB123", ev.SubscriptionID)
	assert.Equal(t, userID, ev.UserID)
}

func TestBillingEventFromPayPal_LifecycleUsesResourceID(t *testing.T) {
	ev := BillingEventFromPayPal(&dto.PayPalWebhook{
		ID:        "WH-2",
		EventType: "BILLING.SUBSCRIPTION.CANCELLED",
		Resource: dto.PayPalResource{
			ID:               "I-SUB123",
			StatusChangeNote: "Cancelled by user",
		},
	})

	assert.Equal(t, EventCancelled, ev.Kind)
	assert.Equal(t, "I-SUB123", ev.SubscriptionID)
	assert.Equal(t, "Cancelled by user", ev.Reason)
}

func TestBillingEventFromPayPal_NextBillingTimeBecomesExpiry(t *testing.T) {
	ev := BillingEventFromPayPal(&dto.PayPalWebhook{
		ID:        "WH-3",
		EventType: "BILLING.SUBSCRIPTION.ACTIVATED",
		Resource: dto.PayPalResource{
			ID: "I-SUB123",
			BillingInfo: &dto.PayPalBillingInfo{
				NextBillingTime: "2026-04-01T00:00:00Z",
			},
		},
	})

	require.NotNil(t, ev.ExpiresAt)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), ev.ExpiresAt.UTC())
}

func TestTierForIntervalUnit(t *testing.T) {
	assert.Equal(t, models.PlanYearly, tierForIntervalUnit("YEAR"))
	assert.Equal(t, models.PlanMonthly, tierForIntervalUnit("MONTH"))
	assert.Equal(t, models.PlanMonthly, tierForIntervalUnit("WEEK"))
}
