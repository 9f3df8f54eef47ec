package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPlanChangeWhileActive = errors.New("cannot change plan while active")
	ErrSubscriptionNotActive = errors.New("subscription is not active at the payment provider")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// PayPalBillingAPI is the slice of the PayPal client the verification path
// depends on.
type PayPalBillingAPI interface {
	GetSubscription(subscriptionID string) (*PayPalSubscription, error)
	GetPlan(planID string) (*PayPalPlan, error)
}

// SubscriptionService is the state updater: it turns normalized billing
// events into transitions on the per-user subscription row, with the event
// ledger claim and the row mutation inside one transaction.
type SubscriptionService struct {
	db     *gorm.DB
	cfg    *config.Config
	ledger *EventLedger
	paypal PayPalBillingAPI
}

func NewSubscriptionService(db *gorm.DB, cfg *config.Config, paypal PayPalBillingAPI) *SubscriptionService {
	return &SubscriptionService{
		db:     db,
		cfg:    cfg,
		ledger: NewEventLedger(db),
		paypal: paypal,
	}
}

// ProcessWebhookEvent claims the event in the ledger and applies its
// transition atomically. A duplicate delivery returns (true, nil) without
// touching the subscription row; failures roll back the ledger claim too, so
// provider redelivery gets a clean retry.
func (s *SubscriptionService) ProcessWebhookEvent(ev *BillingEvent, payload []byte) (bool, error) {
	already := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dup, err := s.ledger.Record(tx, ev.Provider, ev.EventID, ev.EventType, payload)
		if err != nil {
			return err
		}
		if dup {
			already = true
			return nil
		}
		return s.applyEvent(tx, ev)
	})
	return already, err
}

func (s *SubscriptionService) applyEvent(tx *gorm.DB, ev *BillingEvent) error {
	if ev.Kind == EventInformational {
		slog.Info("informational billing event", "provider", ev.Provider, "event_type", ev.EventType, "event_id", ev.EventID)
		return nil
	}

	now := time.Now()

	sub, err := s.findSubscription(tx, ev)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if ev.Kind == EventPaymentCompleted && ev.UserID != uuid.Nil {
			return s.createActiveSubscription(tx, ev, now)
		}
		// The event may reference a cleaned-up subscription; returning
		// success stops the provider from retrying forever.
		slog.Warn("webhook references unknown subscription",
			"provider", ev.Provider, "event_type", ev.EventType,
			"subscription_id", ev.SubscriptionID, "app_user_id", ev.UserID)
		return nil
	}
	if err != nil {
		return err
	}

	openFailure, err := s.openFailure(tx, sub.ID)
	if err != nil {
		return err
	}

	apply, ok := transitions[ev.Kind]
	if !ok {
		slog.Warn("no transition for event kind", "kind", ev.Kind, "event_type", ev.EventType)
		return nil
	}

	changes, fx := apply(sub, openFailure, ev, now)
	if len(changes) == 0 {
		return nil
	}
	if ev.SubscriptionID != "" && sub.PayPalSubscriptionID == "" {
		changes["paypal_subscription_id"] = ev.SubscriptionID
	}

	if err := tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Updates(changes).Error; err != nil {
		return fmt.Errorf("subscription update: %w", err)
	}

	if fx.ResolveFailure && openFailure != nil {
		if err := tx.Model(&models.PaymentFailure{}).
			Where("id = ? AND resolved_at IS NULL", openFailure.ID).
			Update("resolved_at", now).Error; err != nil {
			return fmt.Errorf("payment failure resolve: %w", err)
		}
	}

	if fx.CreateFailure {
		failure := models.PaymentFailure{
			ID:                uuid.New(),
			SubscriptionID:    sub.ID,
			FailedAt:          now,
			Reason:            fx.FailureReason,
			GracePeriodEndsAt: now.Add(GracePeriod),
		}
		if err := tx.Create(&failure).Error; err != nil {
			return fmt.Errorf("payment failure create: %w", err)
		}
	}

	slog.Info("billing event applied",
		"provider", ev.Provider, "event_type", ev.EventType,
		"event_id", ev.EventID, "subscription_id", sub.ID)
	return nil
}

// findSubscription fetches the row FOR UPDATE so two deliveries racing on
// the same subscription serialize instead of both extending from the same
// stale expiry.
func (s *SubscriptionService) findSubscription(tx *gorm.DB, ev *BillingEvent) (*models.UserSubscription, error) {
	var sub models.UserSubscription

	if ev.UserID != uuid.Nil {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", ev.UserID).First(&sub).Error
		if err == nil {
			return &sub, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if ev.SubscriptionID != "" {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("paypal_subscription_id = ?", ev.SubscriptionID).First(&sub).Error
		if err != nil {
			return nil, err
		}
		return &sub, nil
	}

	return nil, gorm.ErrRecordNotFound
}

// createActiveSubscription handles the first purchase for a user without a
// row (or with only a terminal one). The upsert on user_id keeps the one-row
// invariant even when a webhook and the verification endpoint race.
func (s *SubscriptionService) createActiveSubscription(tx *gorm.DB, ev *BillingEvent, now time.Time) error {
	plan := ev.PlanType
	if plan == "" {
		plan = models.PlanMonthly
	}

	sub := models.UserSubscription{
		ID:                    uuid.New(),
		UserID:                ev.UserID,
		PlanType:              plan,
		Status:                models.StatusActive,
		StartedAt:             now,
		ExpiresAt:             extendExpiry(time.Time{}, now, plan, ev.PlanDuration),
		AutoRenewal:           true,
		PayPalSubscriptionID:  ev.SubscriptionID,
		OriginalTransactionID: ev.TransactionID,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type", "status", "started_at", "expires_at", "auto_renewal",
			"paypal_subscription_id", "original_transaction_id",
		}),
	}).Create(&sub).Error
}

func (s *SubscriptionService) openFailure(tx *gorm.DB, subscriptionID uuid.UUID) (*models.PaymentFailure, error) {
	var failure models.PaymentFailure
	err := tx.Where("subscription_id = ? AND resolved_at IS NULL", subscriptionID).
		Order("failed_at DESC").First(&failure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &failure, nil
}

// VerifyCheckout is the synchronous fallback for delayed webhooks: the client
// calls it right after checkout, we query PayPal directly and apply the same
// renewal-path transition the webhook would.
func (s *SubscriptionService) VerifyCheckout(subscriptionID string, userID uuid.UUID) (*models.UserSubscription, error) {
	ppSub, err := s.paypal.GetSubscription(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("subscription lookup failed: %w", err)
	}
	if ppSub.Status != "ACTIVE" && ppSub.Status != "APPROVED" {
		return nil, ErrSubscriptionNotActive
	}

	plan, err := s.paypal.GetPlan(ppSub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("plan lookup failed: %w", err)
	}

	tier := models.PlanMonthly
	for _, cycle := range plan.BillingCycles {
		if cycle.TenureType == "REGULAR" {
			tier = tierForIntervalUnit(cycle.Frequency.IntervalUnit)
			break
		}
	}

	s.checkPaidAmount(ppSub, tier)

	// The read-check-update runs in one transaction with the row locked, so
	// a webhook landing at the same moment cannot interleave between the
	// read and the write.
	now := time.Now()
	var sub models.UserSubscription
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&sub).Error
		switch {
		case err == nil:
			if sub.IsPremium(now) && sub.PlanType != tier {
				return ErrPlanChangeWhileActive
			}
			newExpiry := extendExpiry(sub.ExpiresAt, now, tier, 0)
			changes := map[string]interface{}{
				"status":                 models.StatusActive,
				"plan_type":              tier,
				"expires_at":             newExpiry,
				"auto_renewal":           true,
				"paypal_subscription_id": subscriptionID,
				"payment_failed_at":      nil,
				"suspended_at":           nil,
			}
			if err := tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Updates(changes).Error; err != nil {
				return fmt.Errorf("subscription update: %w", err)
			}
			sub.Status = models.StatusActive
			sub.PlanType = tier
			sub.ExpiresAt = newExpiry
			sub.AutoRenewal = true
			sub.PayPalSubscriptionID = subscriptionID
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.UserSubscription{
				ID:                   uuid.New(),
				UserID:               userID,
				PlanType:             tier,
				Status:               models.StatusActive,
				StartedAt:            now,
				ExpiresAt:            extendExpiry(time.Time{}, now, tier, 0),
				AutoRenewal:          true,
				PayPalSubscriptionID: subscriptionID,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return fmt.Errorf("subscription create: %w", err)
			}
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// checkPaidAmount compares the last charge against the expected tier price.
// Mismatches are logged, not rejected: discount codes are legitimate.
func (s *SubscriptionService) checkPaidAmount(ppSub *PayPalSubscription, tier models.PlanType) {
	raw := ppSub.BillingInfo.LastPayment.Amount.Value
	if raw == "" {
		return
	}
	paid, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}

	expected := s.cfg.MonthlyPriceUSD
	if tier == models.PlanYearly {
		expected = s.cfg.YearlyPriceUSD
	}

	if math.Abs(paid-expected) > 0.01 {
		slog.Warn("paid amount differs from expected tier price",
			"subscription_id", ppSub.ID, "tier", tier, "paid", paid, "expected", expected)
	}
}

// GetForUser returns the user's subscription row.
func (s *SubscriptionService) GetForUser(userID uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// IsPremium reports whether the user currently has paid access.
func (s *SubscriptionService) IsPremium(userID uuid.UUID) bool {
	sub, err := s.GetForUser(userID)
	if err != nil {
		return false
	}
	return sub.IsPremium(time.Now())
}
