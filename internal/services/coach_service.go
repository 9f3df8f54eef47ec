package services

import (
	"errors"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMessageLimitReached = errors.New("daily coach message limit reached")

const coachSystemPrompt = `You are Gatofit Coach, a friendly fitness and nutrition assistant inside a workout-tracking app. Give practical, safe advice on training, recovery and diet. Keep answers under 200 words. You are not a doctor; for medical issues, tell the user to see a professional.`

// History turns sent to the model per request. Older turns stay in the DB
// but are not resent.
const coachHistoryWindow = 10

type CoachService struct {
	db      *gorm.DB
	cfg     *config.Config
	ai      *AIClient
	billing *SubscriptionService
}

func NewCoachService(db *gorm.DB, cfg *config.Config, ai *AIClient, billing *SubscriptionService) *CoachService {
	return &CoachService{db: db, cfg: cfg, ai: ai, billing: billing}
}

func (s *CoachService) Chat(userID uuid.UUID, req *dto.CoachChatRequest) (*dto.CoachChatResponse, error) {
	if req.Message == "" {
		return nil, errors.New("message is required")
	}
	if len(req.Message) > 2000 {
		return nil, errors.New("message too long")
	}

	premium := s.billing.IsPremium(userID)
	messagesLeft := -1
	if !premium {
		used, err := s.messagesToday(userID)
		if err != nil {
			return nil, err
		}
		if used >= int64(s.cfg.FreeCoachMessagesPerDay) {
			return nil, ErrMessageLimitReached
		}
		messagesLeft = s.cfg.FreeCoachMessagesPerDay - int(used) - 1
	}

	history, err := s.recentHistory(userID)
	if err != nil {
		return nil, err
	}

	reply, _, err := s.ai.Chat(coachSystemPrompt, history, req.Message)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		userMsg := models.CoachMessage{ID: uuid.New(), UserID: userID, Role: "user", Content: req.Message}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		assistantMsg := models.CoachMessage{ID: uuid.New(), UserID: userID, Role: "assistant", Content: reply}
		return tx.Create(&assistantMsg).Error
	})
	if err != nil {
		return nil, err
	}

	return &dto.CoachChatResponse{Reply: reply, MessagesLeft: messagesLeft}, nil
}

func (s *CoachService) History(userID uuid.UUID, limit int) ([]dto.CoachMessageResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.CoachMessage
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// reverse into chronological order
	out := make([]dto.CoachMessageResponse, len(rows))
	for i, m := range rows {
		out[len(rows)-1-i] = dto.CoachMessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}

func (s *CoachService) ClearHistory(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.CoachMessage{}).Error
}

func (s *CoachService) recentHistory(userID uuid.UUID) ([]chatMessage, error) {
	var rows []models.CoachMessage
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(coachHistoryWindow).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]chatMessage, len(rows))
	for i, m := range rows {
		out[len(rows)-1-i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return out, nil
}

func (s *CoachService) messagesToday(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.CoachMessage{}).
		Where("user_id = ? AND role = 'user' AND created_at >= ?", userID, truncateToDay(time.Now())).
		Count(&count).Error
	return count, err
}
