package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// InsightClient клиент для генерации торговых инсайтов
type InsightClient struct {
	baseClient *Client
}

// NewInsightClient создает новый insight client
func NewInsightClient(baseClient *Client) *InsightClient {
	return &InsightClient{
		baseClient: baseClient,
	}
}

// InsightRequest запрос на генерацию инсайта
type InsightRequest struct {
	Symbol    string `json:"symbol"`
	TradeMode string `json:"trade_mode"`
	Risk      string `json:"risk"`

	// Опциональные текстовые блоки рыночного контекста.
	// Передаются в промпт как есть, модель сама решает, что учесть.
	MarketBlob    string `json:"market,omitempty"`
	SentimentBlob string `json:"sentiment,omitempty"`
	OnChainBlob   string `json:"on_chain,omitempty"`
}

// RequestInsight запрашивает прогноз у AI и валидирует строгую схему ответа
func (ic *InsightClient) RequestInsight(ctx context.Context, req InsightRequest) (*domain.Insight, error) {
	messages := []Message{
		{Role: "system", Content: GetInsightSystemPrompt()},
		{Role: "user", Content: ic.buildInsightPrompt(req)},
	}

	response, err := ic.baseClient.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInsightAPI, err)
	}

	// Парсим JSON ответ, при необходимости доставая его из markdown
	var insight domain.Insight
	if err := json.Unmarshal([]byte(response), &insight); err != nil {
		cleanJSON := extractJSON(response)
		if cleanJSON == "" {
			return nil, fmt.Errorf("failed to parse AI response: %w\nRaw response: %s", err, response)
		}
		if err := json.Unmarshal([]byte(cleanJSON), &insight); err != nil {
			return nil, fmt.Errorf("failed to parse AI response: %w\nRaw response: %s", err, response)
		}
	}

	if err := validateInsight(&insight); err != nil {
		return nil, fmt.Errorf("invalid insight: %w", err)
	}

	return &insight, nil
}

// buildInsightPrompt строит промпт для генерации инсайта
func (ic *InsightClient) buildInsightPrompt(req InsightRequest) string {
	prompt := fmt.Sprintf(`Generate a trading insight for the following request.

Target symbol: %s
Trade mode: %s
Risk tier: %s
`, req.Symbol, req.TradeMode, req.Risk)

	if req.MarketBlob != "" {
		prompt += fmt.Sprintf("\nMarket data:\n%s\n", req.MarketBlob)
	}
	if req.SentimentBlob != "" {
		prompt += fmt.Sprintf("\nSentiment:\n%s\n", req.SentimentBlob)
	}
	if req.OnChainBlob != "" {
		prompt += fmt.Sprintf("\nOn-chain activity:\n%s\n", req.OnChainBlob)
	}

	prompt += "\nRespond with the JSON object only."
	return prompt
}

// validateInsight проверяет строгую схему инсайта на границе
func validateInsight(insight *domain.Insight) error {
	switch insight.Prediction {
	case domain.PredictionBuy, domain.PredictionSell, domain.PredictionHold:
	default:
		return fmt.Errorf("unknown prediction %q", insight.Prediction)
	}

	if insight.Confidence < 0 || insight.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range [0,100]", insight.Confidence)
	}
	if insight.ShadowScore < 0 || insight.ShadowScore > 100 {
		return fmt.Errorf("shadow score %d out of range [0,100]", insight.ShadowScore)
	}
	if insight.StopLoss == "" || insight.TakeProfit == "" {
		return fmt.Errorf("missing stop loss or take profit")
	}
	return nil
}
