package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// BinanceOracle получает цены через публичный spot API Binance.
// Ключи не нужны: ticker-эндпоинт открытый.
type BinanceOracle struct {
	client  *binance.Client
	limiter *rate.Limiter
	timeout time.Duration
}

func NewBinanceOracle(cfg config.OracleConfig) *BinanceOracle {
	return &BinanceOracle{
		client:  binance.NewClient("", ""),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		timeout: cfg.Timeout,
	}
}

// GetPrice получает текущую цену актива
func (o *BinanceOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	prices, err := o.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrOracleAPI, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price data for symbol %s", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price for %s: %w", symbol, err)
	}
	return price, nil
}
