package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the append-only idempotency ledger. EventID carries the
// provider's unique event identifier; the primary key makes a second delivery
// an ON CONFLICT no-op instead of a duplicate side effect.
type WebhookEvent struct {
	EventID     string         `gorm:"primaryKey;size:128" json:"event_id"`
	Provider    string         `gorm:"size:20;not null;index" json:"provider"`
	EventType   string         `gorm:"size:80;index" json:"event_type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ProcessedAt time.Time      `gorm:"not null" json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
