package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsPremium(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Hour)
	stale := now.Add(-5 * 24 * time.Hour)

	tests := []struct {
		name string
		sub  UserSubscription
		want bool
	}{
		{
			name: "active with time left",
			sub:  UserSubscription{Status: StatusActive, ExpiresAt: now.Add(24 * time.Hour)},
			want: true,
		},
		{
			name: "active but lapsed",
			sub:  UserSubscription{Status: StatusActive, ExpiresAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "trial with time left",
			sub:  UserSubscription{Status: StatusTrial, ExpiresAt: now.Add(24 * time.Hour)},
			want: true,
		},
		{
			name: "payment failed within grace window",
			sub:  UserSubscription{Status: StatusPaymentFailed, PaymentFailedAt: &recent},
			want: true,
		},
		{
			name: "payment failed past grace window",
			sub:  UserSubscription{Status: StatusPaymentFailed, PaymentFailedAt: &stale},
			want: false,
		},
		{
			name: "payment failed without timestamp",
			sub:  UserSubscription{Status: StatusPaymentFailed},
			want: false,
		},
		{
			name: "suspended",
			sub:  UserSubscription{Status: StatusSuspended, ExpiresAt: now.Add(24 * time.Hour)},
			want: false,
		},
		{
			name: "expired",
			sub:  UserSubscription{Status: StatusExpired},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsPremium(now))
		})
	}
}
