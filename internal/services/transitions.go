package services

import (
	"log/slog"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
)

// EventKind is the provider-neutral classification of a billing event. Both
// webhook handlers reduce their provider vocabulary to these kinds before
// anything touches the subscription row.
type EventKind string

const (
	EventPaymentCompleted EventKind = "payment_completed"
	EventCancelled        EventKind = "cancelled"
	EventSuspended        EventKind = "suspended"
	EventActivated        EventKind = "activated"
	EventPaymentFailed    EventKind = "payment_failed"
	EventPlanChanged      EventKind = "plan_changed"
	EventExpired          EventKind = "expired"
	EventInformational    EventKind = "informational"
)

// GracePeriod is how long a subscription survives an unresolved payment
// failure before a suspension event expires it.
const GracePeriod = models.PaymentGracePeriod

// BillingEvent is the normalized event passed to the state updater.
type BillingEvent struct {
	Kind           EventKind
	Provider       string
	EventID        string
	EventType      string // raw provider event type, for the ledger and logs
	SubscriptionID string // provider correlation ID (PayPal billing agreement / subscription)
	UserID         uuid.UUID
	ProductID      string
	PlanType       models.PlanType // resolved tier, empty when the event carries none
	PlanDuration   time.Duration   // provider-supplied period length, 0 when unknown
	ExpiresAt      *time.Time      // provider-supplied expiry, nil when unknown
	TransactionID  string          // original transaction ID when the provider sends one
	Reason         string
	Price          float64
}

var planDurations = map[models.PlanType]time.Duration{
	models.PlanMonthly: 30 * 24 * time.Hour,
	models.PlanYearly:  365 * 24 * time.Hour,
}

func planDuration(p models.PlanType) time.Duration {
	if d, ok := planDurations[p]; ok {
		return d
	}
	return planDurations[models.PlanMonthly]
}

// productPlans maps provider product/package identifiers to internal tiers.
var productPlans = map[string]models.PlanType{
	"gatofit_monthly":         models.PlanMonthly,
	"gatofit_yearly":          models.PlanYearly,
	"gatofit_premium_monthly": models.PlanMonthly,
	"gatofit_premium_yearly":  models.PlanYearly,
	"$rc_monthly":             models.PlanMonthly,
	"$rc_annual":              models.PlanYearly,
}

// PlanForProduct resolves a provider product ID to a tier. Unmapped IDs fall
// back to monthly; the warning exists so a product launched without a mapping
// shows up in logs instead of silently granting the wrong tier.
func PlanForProduct(productID string) models.PlanType {
	if plan, ok := productPlans[productID]; ok {
		return plan
	}
	slog.Warn("unmapped product id, defaulting to monthly tier", "product_id", productID)
	return models.PlanMonthly
}

// extendExpiry computes the new expiration for a successful payment. The base
// is max(current expiry, now) so early renewals never lose banked time; the
// extension is the provider-supplied period when known, the tier default
// otherwise.
func extendExpiry(current, now time.Time, plan models.PlanType, providerDuration time.Duration) time.Time {
	base := current
	if now.After(base) {
		base = now
	}
	d := providerDuration
	if d <= 0 {
		d = planDuration(plan)
	}
	return base.Add(d)
}

// sideEffects lists the non-column consequences of a transition.
type sideEffects struct {
	ResolveFailure bool   // close the open PaymentFailure episode
	CreateFailure  bool   // open a new PaymentFailure episode
	FailureReason  string
}

// transitionFunc computes the column updates for one event kind. It is pure:
// persistence, failure-row bookkeeping and logging stay in the service.
type transitionFunc func(sub *models.UserSubscription, openFailure *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects)

// transitions is the state machine: one entry per event kind, no hidden
// branches in handler code.
var transitions = map[EventKind]transitionFunc{
	EventPaymentCompleted: applyPaymentCompleted,
	EventCancelled:        applyCancelled,
	EventSuspended:        applySuspended,
	EventActivated:        applyActivated,
	EventPaymentFailed:    applyPaymentFailed,
	EventPlanChanged:      applyPlanChanged,
	EventExpired:          applyExpired,
	EventInformational:    applyInformational,
}

func applyPaymentCompleted(sub *models.UserSubscription, openFailure *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects) {
	plan := ev.PlanType
	if plan == "" {
		plan = sub.PlanType
	}
	changes := map[string]interface{}{
		"status":            models.StatusActive,
		"plan_type":         plan,
		"expires_at":        extendExpiry(sub.ExpiresAt, now, plan, ev.PlanDuration),
		"auto_renewal":      true,
		"payment_failed_at": nil,
	}
	var fx sideEffects
	if openFailure != nil {
		fx.ResolveFailure = true
	}
	return changes, fx
}

func applyCancelled(sub *models.UserSubscription, _ *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects) {
	return map[string]interface{}{
		"auto_renewal":        false,
		"cancelled_at":        now,
		"cancellation_reason": ev.Reason,
	}, sideEffects{}
}

func applySuspended(sub *models.UserSubscription, openFailure *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects) {
	status := models.StatusSuspended
	if openFailure != nil && now.Sub(openFailure.FailedAt) >= GracePeriod {
		status = models.StatusExpired
	}
	return map[string]interface{}{
		"status":       status,
		"suspended_at": now,
		"auto_renewal": false,
	}, sideEffects{}
}

func applyActivated(sub *models.UserSubscription, _ *models.PaymentFailure, _ *BillingEvent, _ time.Time) (map[string]interface{}, sideEffects) {
	return map[string]interface{}{
		"status":       models.StatusActive,
		"suspended_at": nil,
		"auto_renewal": true,
	}, sideEffects{}
}

func applyPaymentFailed(sub *models.UserSubscription, _ *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects) {
	// auto_renewal stays true: the provider keeps retrying the charge.
	return map[string]interface{}{
			"status":            models.StatusPaymentFailed,
			"payment_failed_at": now,
		}, sideEffects{
			CreateFailure: true,
			FailureReason: ev.Reason,
		}
}

func applyPlanChanged(sub *models.UserSubscription, _ *models.PaymentFailure, ev *BillingEvent, now time.Time) (map[string]interface{}, sideEffects) {
	plan := ev.PlanType
	if plan == "" {
		plan = sub.PlanType
	}
	expires := sub.ExpiresAt
	if ev.ExpiresAt != nil {
		expires = *ev.ExpiresAt
	}
	return map[string]interface{}{
		"plan_type":           plan,
		"expires_at":          expires,
		"next_plan_type":      nil,
		"next_plan_starts_at": nil,
	}, sideEffects{}
}

func applyExpired(sub *models.UserSubscription, _ *models.PaymentFailure, _ *BillingEvent, _ time.Time) (map[string]interface{}, sideEffects) {
	return map[string]interface{}{
		"status":       models.StatusExpired,
		"auto_renewal": false,
	}, sideEffects{}
}

func applyInformational(_ *models.UserSubscription, _ *models.PaymentFailure, _ *BillingEvent, _ time.Time) (map[string]interface{}, sideEffects) {
	return nil, sideEffects{}
}
