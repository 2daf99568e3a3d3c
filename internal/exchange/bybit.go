package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// BybitOracle получает цены через публичный v5 API Bybit.
// Используется только tickers-эндпоинт, подпись не требуется.
type BybitOracle struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type tickerResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

func NewBybitOracle(cfg config.OracleConfig) *BybitOracle {
	return &BybitOracle{
		baseURL: cfg.BybitBaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// GetPrice получает текущую цену актива
func (o *BybitOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/v5/market/tickers?category=%s&symbol=%s",
		o.baseURL, domain.BybitCategorySpot, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var tickerResp tickerResponse
	if err := json.Unmarshal(body, &tickerResp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if tickerResp.RetCode != 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrOracleAPI, tickerResp.RetMsg)
	}

	if len(tickerResp.Result.List) == 0 {
		return 0, fmt.Errorf("no price data for symbol %s", symbol)
	}

	lastPrice := tickerResp.Result.List[0].LastPrice
	if lastPrice == "" {
		return 0, fmt.Errorf("empty price data for symbol %s", symbol)
	}

	price, err := strconv.ParseFloat(lastPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price for %s: %w", symbol, err)
	}

	return price, nil
}
