package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnalyzeFoodRequest struct {
	ImageData string `json:"image_data,omitempty"` // base64 jpeg/png
	ImageURL  string `json:"image_url,omitempty"`
	Hint      string `json:"hint,omitempty"` // optional user description
}

type FoodAnalysisResponse struct {
	Entry        interface{} `json:"entry"`
	ScansLeft    int         `json:"scans_left"` // -1 for premium
	IsSubscribed bool        `json:"is_subscribed"`
}

type DailyTotalsResponse struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Entries  int     `json:"entries"`
}

type CoachChatRequest struct {
	Message string `json:"message"`
}

type CoachChatResponse struct {
	Reply        string `json:"reply"`
	MessagesLeft int    `json:"messages_left"` // -1 for premium
}

type CoachMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
