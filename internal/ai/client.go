package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
)

// Client клиент OpenAI-совместимого chat API (Gemini через
// openai-compat endpoint, OpenAI, Ollama — выбирается конфигурацией)
type Client struct {
	provider string
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		provider: cfg.Provider,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Chat отправляет сообщения и возвращает текст первого ответа
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	requestBody := ChatRequest{
		Model:    c.model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	// Строим endpoint, не дублируя /v1, если baseURL уже содержит его
	endpoint := c.baseURL
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	endpoint += "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error: %s", string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON извлекает JSON из markdown code block
func extractJSON(text string) string {
	// Простой парсер для ```json...```
	start := strings.Index(text, "```")
	if start == -1 {
		// Fallback: берем все между первой { и последней }
		first := strings.Index(text, "{")
		last := strings.LastIndex(text, "}")
		if first != -1 && last > first {
			return text[first : last+1]
		}
		return ""
	}
	start += 3
	if strings.HasPrefix(text[start:], "json") {
		start += 4
	}

	end := strings.Index(text[start:], "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}
