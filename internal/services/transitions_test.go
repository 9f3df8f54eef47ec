package services

import (
	"testing"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendExpiry_EarlyRenewalKeepsBankedTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now.Add(10 * 24 * time.Hour) // 10 days left

	got := extendExpiry(current, now, models.PlanMonthly, 0)

	assert.Equal(t, current.Add(30*24*time.Hour), got)
}

func TestExtendExpiry_LapsedSubscriptionExtendsFromNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now.Add(-20 * 24 * time.Hour) // expired 20 days ago

	got := extendExpiry(current, now, models.PlanYearly, 0)

	assert.Equal(t, now.Add(365*24*time.Hour), got)
}

func TestExtendExpiry_ProviderDurationWins(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	providerPeriod := 31 * 24 * time.Hour

	got := extendExpiry(now, now, models.PlanMonthly, providerPeriod)

	assert.Equal(t, now.Add(providerPeriod), got)
}

func TestApplyPaymentCompleted_ReactivatesAndResolvesFailure(t *testing.T) {
	now := time.Now()
	sub := &models.UserSubscription{
		Status:    models.StatusPaymentFailed,
		PlanType:  models.PlanMonthly,
		ExpiresAt: now.Add(-time.Hour),
	}
	failure := &models.PaymentFailure{FailedAt: now.Add(-24 * time.Hour)}

	changes, fx := applyPaymentCompleted(sub, failure, &BillingEvent{}, now)

	assert.Equal(t, models.StatusActive, changes["status"])
	assert.Equal(t, models.PlanMonthly, changes["plan_type"])
	assert.Equal(t, true, changes["auto_renewal"])
	assert.Nil(t, changes["payment_failed_at"])
	assert.True(t, fx.ResolveFailure)
	assert.False(t, fx.CreateFailure)
}

func TestApplyPaymentCompleted_UsesEventPlan(t *testing.T) {
	now := time.Now()
	sub := &models.UserSubscription{PlanType: models.PlanMonthly, ExpiresAt: now}

	changes, _ := applyPaymentCompleted(sub, nil, &BillingEvent{PlanType: models.PlanYearly}, now)

	assert.Equal(t, models.PlanYearly, changes["plan_type"])
	assert.Equal(t, now.Add(365*24*time.Hour), changes["expires_at"])
}

func TestApplyCancelled_KeepsAccessUntilExpiry(t *testing.T) {
	now := time.Now()
	sub := &models.UserSubscription{
		Status:    models.StatusActive,
		ExpiresAt: now.Add(20 * 24 * time.Hour),
	}

	changes, fx := applyCancelled(sub, nil, &BillingEvent{Reason: "user requested"}, now)

	// cancellation turns off renewal but never touches status or expiry
	assert.Equal(t, false, changes["auto_renewal"])
	assert.Equal(t, "user requested", changes["cancellation_reason"])
	assert.NotContains(t, changes, "status")
	assert.NotContains(t, changes, "expires_at")
	assert.Equal(t, sideEffects{}, fx)
}

func TestApplySuspended_WithinGracePeriod(t *testing.T) {
	now := time.Now()
	failure := &models.PaymentFailure{FailedAt: now.Add(-2 * 24 * time.Hour)}

	changes, _ := applySuspended(&models.UserSubscription{}, failure, &BillingEvent{}, now)

	assert.Equal(t, models.StatusSuspended, changes["status"])
}

func TestApplySuspended_AfterGracePeriodExpires(t *testing.T) {
	now := time.Now()
	failure := &models.PaymentFailure{FailedAt: now.Add(-5 * 24 * time.Hour)}

	changes, _ := applySuspended(&models.UserSubscription{}, failure, &BillingEvent{}, now)

	assert.Equal(t, models.StatusExpired, changes["status"])
}

func TestApplySuspended_NoOpenFailure(t *testing.T) {
	changes, _ := applySuspended(&models.UserSubscription{}, nil, &BillingEvent{}, time.Now())

	assert.Equal(t, models.StatusSuspended, changes["status"])
	assert.Equal(t, false, changes["auto_renewal"])
}

func TestApplyPaymentFailed_OpensFailureEpisodeKeepsRenewal(t *testing.T) {
	changes, fx := applyPaymentFailed(&models.UserSubscription{}, nil, &BillingEvent{Reason: "card declined"}, time.Now())

	assert.Equal(t, models.StatusPaymentFailed, changes["status"])
	assert.NotContains(t, changes, "auto_renewal")
	assert.True(t, fx.CreateFailure)
	assert.Equal(t, "card declined", fx.FailureReason)
}

func TestApplyPlanChanged_ClearsPendingPlan(t *testing.T) {
	now := time.Now()
	expires := now.Add(365 * 24 * time.Hour)
	sub := &models.UserSubscription{PlanType: models.PlanMonthly, ExpiresAt: now}

	changes, _ := applyPlanChanged(sub, nil, &BillingEvent{PlanType: models.PlanYearly, ExpiresAt: &expires}, now)

	assert.Equal(t, models.PlanYearly, changes["plan_type"])
	assert.Equal(t, expires, changes["expires_at"])
	assert.Nil(t, changes["next_plan_type"])
	assert.Nil(t, changes["next_plan_starts_at"])
}

func TestApplyInformational_NoChanges(t *testing.T) {
	changes, fx := applyInformational(nil, nil, nil, time.Time{})

	assert.Nil(t, changes)
	assert.Equal(t, sideEffects{}, fx)
}

func TestTransitions_CoverEveryKind(t *testing.T) {
	kinds := []EventKind{
		EventPaymentCompleted, EventCancelled, EventSuspended, EventActivated,
		EventPaymentFailed, EventPlanChanged, EventExpired, EventInformational,
	}
	for _, k := range kinds {
		require.Contains(t, transitions, k, "missing transition for %s", k)
	}
}

func TestPlanForProduct(t *testing.T) {
	assert.Equal(t, models.PlanYearly, PlanForProduct("gatofit_yearly"))
	assert.Equal(t, models.PlanMonthly, PlanForProduct("$rc_monthly"))
	assert.Equal(t, models.PlanYearly, PlanForProduct("$rc_annual"))
	// unmapped products grant monthly rather than failing the webhook
	assert.Equal(t, models.PlanMonthly, PlanForProduct("gatofit_lifetime_v2"))
}
