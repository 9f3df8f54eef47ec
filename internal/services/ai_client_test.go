package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestChat_UsesOpenAIFirst(t *testing.T) {
	openai := chatCompletionServer(t, http.StatusOK, "eat more protein")
	defer openai.Close()

	client := NewAIClient(&config.Config{
		OpenAIAPIKey: "key-1",
		OpenAIAPIURL: openai.URL,
		OpenAIModel:  "gpt-4o-mini",
		AITimeout:    5 * time.Second,
	})

	reply, model, err := client.Chat("system", nil, "what should I eat?")
	require.NoError(t, err)
	assert.Equal(t, "eat more protein", reply)
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestChat_FallsBackToDeepSeek(t *testing.T) {
	openai := chatCompletionServer(t, http.StatusServiceUnavailable, "")
	defer openai.Close()
	deepseek := chatCompletionServer(t, http.StatusOK, "rest days matter")
	defer deepseek.Close()

	client := NewAIClient(&config.Config{
		OpenAIAPIKey:   "key-1",
		OpenAIAPIURL:   openai.URL,
		OpenAIModel:    "gpt-4o-mini",
		DeepSeekAPIKey: "key-2",
		DeepSeekAPIURL: deepseek.URL,
		DeepSeekModel:  "deepseek-chat",
		AITimeout:      5 * time.Second,
	})

	reply, model, err := client.Chat("system", nil, "how often should I train?")
	require.NoError(t, err)
	assert.Equal(t, "rest days matter", reply)
	assert.Equal(t, "deepseek-chat", model)
}

func TestChat_NoProviderConfigured(t *testing.T) {
	client := NewAIClient(&config.Config{AITimeout: time.Second})

	_, _, err := client.Chat("system", nil, "hello")
	assert.Error(t, err)
}

func TestAnalyzeImage_RequiresOpenAI(t *testing.T) {
	client := NewAIClient(&config.Config{AITimeout: time.Second})

	_, _, err := client.AnalyzeImage("prompt", "data:image/jpeg;base64,abc", "")
	assert.Error(t, err)
}
