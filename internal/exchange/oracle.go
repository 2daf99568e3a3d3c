package exchange

import (
	"context"
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// PriceOracle возвращает последнюю цену актива. Любая ошибка означает
// "цены нет": вызывающий пропускает тик и ждет следующего опроса;
// отсутствие цены никогда не трактуется как исход сделки.
type PriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// NewOracle создает источник цен по конфигурации. При включенном
// failover второй провайдер подключается запасным.
func NewOracle(cfg config.OracleConfig, logger *utils.Logger) (PriceOracle, error) {
	var primary, secondary PriceOracle
	switch cfg.Provider {
	case domain.OracleBinance:
		primary, secondary = NewBinanceOracle(cfg), NewBybitOracle(cfg)
	case domain.OracleBybit:
		primary, secondary = NewBybitOracle(cfg), NewBinanceOracle(cfg)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}

	if !cfg.Fallback {
		return primary, nil
	}
	return NewFailoverOracle(primary, logger, secondary), nil
}
