package services

import (
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventLedger is the idempotency record for inbound webhooks. The insert uses
// ON CONFLICT DO NOTHING on the event ID, so claiming an event and detecting a
// duplicate is a single atomic statement.
type EventLedger struct {
	db *gorm.DB
}

func NewEventLedger(db *gorm.DB) *EventLedger {
	return &EventLedger{db: db}
}

// Record claims eventID inside tx. It returns true when the event was already
// processed (conflicting insert affected zero rows).
func (l *EventLedger) Record(tx *gorm.DB, provider, eventID, eventType string, payload []byte) (bool, error) {
	ev := models.WebhookEvent{
		EventID:     eventID,
		Provider:    provider,
		EventType:   eventType,
		Payload:     datatypes.JSON(payload),
		ProcessedAt: time.Now(),
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

// HasProcessed reports whether eventID was recorded before. Handlers use
// Record for the actual claim; this exists for read-only checks.
func (l *EventLedger) HasProcessed(eventID string) (bool, error) {
	var count int64
	err := l.db.Model(&models.WebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}
