package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// cacheTTL срок жизни закешированной цены при полной недоступности
// источников
const cacheTTL = 5 * time.Minute

// FailoverOracle цепочка источников цен: основной, затем запасные,
// затем недавний кеш. Ошибка возвращается только когда вся цепочка
// исчерпана — для трекинга это обычный пропуск тика.
type FailoverOracle struct {
	primary   PriceOracle
	fallbacks []PriceOracle
	logger    *utils.Logger

	mu    sync.Mutex
	cache map[string]cachedPrice
}

type cachedPrice struct {
	price     float64
	timestamp time.Time
}

// NewFailoverOracle создает failover поверх основного источника
func NewFailoverOracle(primary PriceOracle, logger *utils.Logger, fallbacks ...PriceOracle) *FailoverOracle {
	return &FailoverOracle{
		primary:   primary,
		fallbacks: fallbacks,
		logger:    logger,
		cache:     make(map[string]cachedPrice),
	}
}

// GetPrice получает цену с failover
func (f *FailoverOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	price, err := f.primary.GetPrice(ctx, symbol)
	if err == nil {
		f.remember(symbol, price)
		return price, nil
	}

	for i, source := range f.fallbacks {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		price, err := source.GetPrice(ctx, symbol)
		if err == nil {
			f.logger.Warn("⚠️ Using fallback source #%d for %s price", i+1, symbol)
			f.remember(symbol, price)
			return price, nil
		}
	}

	f.mu.Lock()
	cached, ok := f.cache[symbol]
	f.mu.Unlock()
	if ok {
		age := time.Since(cached.timestamp)
		if age < cacheTTL {
			f.logger.Warn("⚠️ Using cached price for %s (age: %v)", symbol, age)
			return cached.price, nil
		}
	}

	return 0, domain.ErrOracleAPI
}

func (f *FailoverOracle) remember(symbol string, price float64) {
	f.mu.Lock()
	f.cache[symbol] = cachedPrice{price: price, timestamp: time.Now()}
	f.mu.Unlock()
}
