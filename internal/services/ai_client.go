package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatofitnees/gatofit-backend/internal/config"
)

// AIClient talks to OpenAI-compatible chat-completion endpoints. OpenAI is
// the primary provider; DeepSeek takes over for text-only requests when
// OpenAI is unconfigured or failing.
type AIClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewAIClient(cfg *config.Config) *AIClient {
	return &AIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.AITimeout},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string, or []contentPart for vision
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends a text conversation, trying OpenAI first and DeepSeek second.
// Returns the reply and the model that produced it.
func (c *AIClient) Chat(systemPrompt string, history []chatMessage, userMessage string) (string, string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	if c.cfg.OpenAIAPIKey != "" {
		reply, err := c.complete(c.cfg.OpenAIAPIURL, c.cfg.OpenAIAPIKey, chatRequest{
			Model:       c.cfg.OpenAIModel,
			Messages:    messages,
			Temperature: 0.7,
			MaxTokens:   800,
		})
		if err == nil {
			return reply, c.cfg.OpenAIModel, nil
		}
		slog.Warn("openai chat failed, trying deepseek", "error", err)
	}

	if c.cfg.DeepSeekAPIKey != "" {
		reply, err := c.complete(c.cfg.DeepSeekAPIURL, c.cfg.DeepSeekAPIKey, chatRequest{
			Model:       c.cfg.DeepSeekModel,
			Messages:    messages,
			Temperature: 0.7,
			MaxTokens:   800,
		})
		if err == nil {
			return reply, c.cfg.DeepSeekModel, nil
		}
		slog.Error("deepseek chat failed", "error", err)
		return "", "", err
	}

	return "", "", errors.New("no AI provider configured")
}

// AnalyzeImage sends a vision request to OpenAI. DeepSeek has no vision
// endpoint, so there is no fallback provider here.
func (c *AIClient) AnalyzeImage(systemPrompt, imageURL, hint string) (string, string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", "", errors.New("no vision provider configured")
	}

	userText := "Analyze this meal photo."
	if hint != "" {
		userText += " The user says: " + hint
	}

	reply, err := c.complete(c.cfg.OpenAIAPIURL, c.cfg.OpenAIAPIKey, chatRequest{
		Model: c.cfg.OpenAIVisionModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userText},
				{Type: "image_url", ImageURL: &imageURLPart{URL: imageURL}},
			}},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return "", "", err
	}
	return reply, c.cfg.OpenAIVisionModel, nil
}

func (c *AIClient) complete(url, apiKey string, body chatRequest) (string, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI provider returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("AI provider returned no choices")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// stripCodeFence removes a ```json ... ``` wrapper that models sometimes add
// despite instructions.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	return content
}
