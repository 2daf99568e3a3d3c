package lifecycle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// ParseThreshold переводит ценовую строку инсайта ("$24,800") в число.
// Убирается все, кроме цифр, знака и десятичной точки — формат строк
// контрактный и сохраняется дословно, парсинг повторяется на каждом тике.
func ParseThreshold(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '+' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value in threshold %q", s)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse threshold %q: %w", s, err)
	}
	return value, nil
}

// EvaluateOutcome сравнивает цену с порогами с учетом направления
// прогноза. Пустая строка — исхода еще нет, опрос продолжается.
//
// BUY: цена >= takeProfit -> TP_HIT, цена <= stopLoss -> SL_HIT.
// Любой другой прогноз зеркально: цена <= takeProfit -> TP_HIT,
// цена >= stopLoss -> SL_HIT.
func EvaluateOutcome(prediction string, price, stopLoss, takeProfit float64) string {
	if prediction == domain.PredictionBuy {
		if price >= takeProfit {
			return domain.OutcomeTPHit
		}
		if price <= stopLoss {
			return domain.OutcomeSLHit
		}
		return ""
	}

	if price <= takeProfit {
		return domain.OutcomeTPHit
	}
	if price >= stopLoss {
		return domain.OutcomeSLHit
	}
	return ""
}
