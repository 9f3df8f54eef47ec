package models

import (
	"time"

	"github.com/google/uuid"
)

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

type SubscriptionStatus string

const (
	StatusActive        SubscriptionStatus = "active"
	StatusTrial         SubscriptionStatus = "trial"
	StatusCancelled     SubscriptionStatus = "cancelled"
	StatusSuspended     SubscriptionStatus = "suspended"
	StatusPaymentFailed SubscriptionStatus = "payment_failed"
	StatusExpired       SubscriptionStatus = "expired"
)

// UserSubscription is the single billing row per user. The unique index on
// user_id enforces the one-row invariant at the storage layer; transitions
// read the row FOR UPDATE inside a transaction so concurrent deliveries
// serialize on it.
type UserSubscription struct {
	ID                    uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID                uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PlanType              PlanType           `gorm:"size:20;not null;default:'free'" json:"plan_type"`
	Status                SubscriptionStatus `gorm:"size:20;not null;default:'expired'" json:"status"`
	StartedAt             time.Time          `json:"started_at"`
	ExpiresAt             time.Time          `gorm:"index" json:"expires_at"`
	AutoRenewal           bool               `gorm:"default:false" json:"auto_renewal"`
	PayPalSubscriptionID  string             `gorm:"size:64;index" json:"paypal_subscription_id,omitempty"`
	OriginalTransactionID string             `gorm:"size:128" json:"-"`
	NextPlanType          *PlanType          `gorm:"size:20" json:"next_plan_type,omitempty"`
	NextPlanStartsAt      *time.Time         `json:"next_plan_starts_at,omitempty"`
	PaymentFailedAt       *time.Time         `json:"payment_failed_at,omitempty"`
	CancelledAt           *time.Time         `json:"cancelled_at,omitempty"`
	CancellationReason    string             `gorm:"size:255" json:"cancellation_reason,omitempty"`
	SuspendedAt           *time.Time         `json:"suspended_at,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	User                  User               `gorm:"foreignKey:UserID" json:"-"`
}

// PaymentGracePeriod is how long paid access survives an unresolved payment
// failure while the provider retries the charge.
const PaymentGracePeriod = 4 * 24 * time.Hour

// IsPremium reports whether the subscription currently unlocks paid features.
// A failed payment keeps access through the grace window.
func (s *UserSubscription) IsPremium(now time.Time) bool {
	switch s.Status {
	case StatusActive, StatusTrial:
		return s.ExpiresAt.After(now)
	case StatusPaymentFailed:
		return s.PaymentFailedAt != nil && now.Sub(*s.PaymentFailedAt) < PaymentGracePeriod
	default:
		return false
	}
}

// PaymentFailure records one failure episode. It stays unresolved until a
// successful payment arrives or the grace window runs out.
type PaymentFailure struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriptionID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"subscription_id"`
	FailedAt          time.Time  `gorm:"not null" json:"failed_at"`
	Reason            string     `gorm:"size:255" json:"reason"`
	GracePeriodEndsAt time.Time  `gorm:"not null" json:"grace_period_ends_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
