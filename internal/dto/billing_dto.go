package dto

import (
	"time"

	"github.com/google/uuid"
)

type VerifySubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	UserID         string `json:"userId"`
}

type VerifySubscriptionResponse struct {
	Success      bool                  `json:"success"`
	Error        string                `json:"error,omitempty"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

type SubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	PlanType  string    `json:"planType"`
	ExpiresAt time.Time `json:"expiresAt"`
}
