package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/dto"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFoodEntryNotFound = errors.New("food entry not found")
	ErrScanLimitReached  = errors.New("daily food scan limit reached")
)

const foodAnalyzerPrompt = `You are a nutrition analyzer for a fitness app. Given a meal photo, respond with JSON only (no markdown, no code fences): {"name": "short dish name", "calories": integer kcal, "protein_g": number, "carbs_g": number, "fat_g": number, "serving_size": "estimated portion"}. Estimate for the visible portion. If the image is not food, use name "unknown" with zeros.`

type FoodService struct {
	db      *gorm.DB
	cfg     *config.Config
	ai      *AIClient
	billing *SubscriptionService
}

func NewFoodService(db *gorm.DB, cfg *config.Config, ai *AIClient, billing *SubscriptionService) *FoodService {
	return &FoodService{db: db, cfg: cfg, ai: ai, billing: billing}
}

type foodAnalysisResult struct {
	Name        string  `json:"name"`
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	ServingSize string  `json:"serving_size"`
}

// Analyze runs the photo through the vision model and logs the result. Free
// users get a fixed number of scans per UTC day; subscribers are unlimited.
func (s *FoodService) Analyze(userID uuid.UUID, req *dto.AnalyzeFoodRequest) (*dto.FoodAnalysisResponse, error) {
	if req.ImageData == "" && req.ImageURL == "" {
		return nil, errors.New("image_data or image_url is required")
	}

	premium := s.billing.IsPremium(userID)
	scansLeft := -1
	if !premium {
		used, err := s.scansToday(userID)
		if err != nil {
			return nil, err
		}
		if used >= int64(s.cfg.FreeFoodScansPerDay) {
			return nil, ErrScanLimitReached
		}
		scansLeft = s.cfg.FreeFoodScansPerDay - int(used) - 1
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		data := req.ImageData
		if !strings.HasPrefix(data, "data:") {
			data = "data:image/jpeg;base64," + data
		}
		imageURL = data
	}

	result, source := s.analyzeImage(imageURL, req.Hint)

	entry := models.FoodLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        result.Name,
		ImageURL:    req.ImageURL,
		Calories:    result.Calories,
		ProteinG:    result.ProteinG,
		CarbsG:      result.CarbsG,
		FatG:        result.FatG,
		ServingSize: result.ServingSize,
		AISource:    source,
		LoggedAt:    time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &dto.FoodAnalysisResponse{
		Entry:        entry,
		ScansLeft:    scansLeft,
		IsSubscribed: premium,
	}, nil
}

func (s *FoodService) analyzeImage(imageURL, hint string) (foodAnalysisResult, string) {
	content, model, err := s.ai.AnalyzeImage(foodAnalyzerPrompt, imageURL, hint)
	if err != nil {
		slog.Warn("food vision analysis failed, using estimate", "error", err)
		return fallbackFoodEstimate(hint), "estimate"
	}

	var result foodAnalysisResult
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &result); err != nil {
		slog.Warn("food vision analysis returned unparseable JSON", "error", err)
		return fallbackFoodEstimate(hint), "estimate"
	}
	if result.Name == "" {
		result.Name = "unknown"
	}
	if result.Calories < 0 {
		result.Calories = 0
	}
	return result, model
}

// fallbackFoodEstimate is a conservative single-serving guess used when no
// vision provider is reachable, so the entry can still be logged and edited.
func fallbackFoodEstimate(hint string) foodAnalysisResult {
	name := strings.TrimSpace(hint)
	if name == "" {
		name = "meal"
	}
	return foodAnalysisResult{
		Name:        name,
		Calories:    450,
		ProteinG:    20,
		CarbsG:      45,
		FatG:        18,
		ServingSize: "1 serving",
	}
}

func (s *FoodService) scansToday(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.FoodLogEntry{}).
		Where("user_id = ? AND logged_at >= ?", userID, truncateToDay(time.Now())).
		Count(&count).Error
	return count, err
}

func (s *FoodService) List(userID uuid.UUID, from, to time.Time) ([]models.FoodLogEntry, error) {
	var entries []models.FoodLogEntry
	err := s.db.Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, from, to).
		Order("logged_at DESC").Find(&entries).Error
	return entries, err
}

func (s *FoodService) DailyTotals(userID uuid.UUID, day time.Time) (*dto.DailyTotalsResponse, error) {
	start := truncateToDay(day)
	end := start.AddDate(0, 0, 1)

	var totals struct {
		Calories int
		ProteinG float64
		CarbsG   float64
		FatG     float64
		Entries  int
	}
	err := s.db.Model(&models.FoodLogEntry{}).
		Select("COALESCE(SUM(calories),0) AS calories, COALESCE(SUM(protein_g),0) AS protein_g, COALESCE(SUM(carbs_g),0) AS carbs_g, COALESCE(SUM(fat_g),0) AS fat_g, COUNT(*) AS entries").
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &dto.DailyTotalsResponse{
		Date:     start.Format("2006-01-02"),
		Calories: totals.Calories,
		ProteinG: totals.ProteinG,
		CarbsG:   totals.CarbsG,
		FatG:     totals.FatG,
		Entries:  totals.Entries,
	}, nil
}

func (s *FoodService) Delete(userID, entryID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.FoodLogEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFoodEntryNotFound
	}
	return nil
}
