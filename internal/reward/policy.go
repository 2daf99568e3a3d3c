package reward

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// Policy рассчитывает вознаграждение за исход сигнала.
// Чистая функция (outcome, confidence) -> Reward: контроллер не знает
// о распределениях, тесты подменяют политику детерминированной.
type Policy interface {
	Settle(outcome string, confidence int) domain.Reward
}

// Bands диапазоны вознаграждений. BSAI за TP_HIT масштабируется
// уверенностью: ожидаемая награда растет с confidence, но остается
// ограниченной. SL_HIT платит только "участие" в XP, строго меньше
// диапазона TP. Gas списывается косметически при любом исходе.
type Bands struct {
	TP struct {
		BsaiBase   int `yaml:"bsai_base"`
		BsaiSpread int `yaml:"bsai_spread"`
		XPBase     int `yaml:"xp_base"`
		XPSpread   int `yaml:"xp_spread"`
	} `yaml:"tp"`
	SL struct {
		XPBase   int `yaml:"xp_base"`
		XPSpread int `yaml:"xp_spread"`
	} `yaml:"sl"`
	Gas struct {
		Base   int `yaml:"base"`
		Spread int `yaml:"spread"`
	} `yaml:"gas"`
}

// DefaultBands возвращает диапазоны по умолчанию
func DefaultBands() Bands {
	var b Bands
	b.TP.BsaiBase = 50
	b.TP.BsaiSpread = 150
	b.TP.XPBase = 40
	b.TP.XPSpread = 80
	b.SL.XPBase = 5
	b.SL.XPSpread = 10
	b.Gas.Base = 1
	b.Gas.Spread = 5
	return b
}

// LoadBands читает диапазоны из YAML-файла; пустой путь — значения
// по умолчанию
func LoadBands(path string) (Bands, error) {
	bands := DefaultBands()
	if path == "" {
		return bands, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return bands, fmt.Errorf("failed to load reward policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &bands); err != nil {
		return bands, fmt.Errorf("failed to parse reward policy: %w", err)
	}
	if err := validateBands(bands); err != nil {
		return bands, fmt.Errorf("invalid reward policy: %w", err)
	}
	return bands, nil
}

func validateBands(b Bands) error {
	if b.TP.BsaiBase <= 0 {
		return fmt.Errorf("tp.bsai_base must be positive")
	}
	if b.TP.BsaiSpread < 0 || b.TP.XPSpread < 0 || b.SL.XPSpread < 0 || b.Gas.Spread < 0 {
		return fmt.Errorf("spreads must be non-negative")
	}
	// Участие за SL должно быть строго меньше диапазона TP
	if b.SL.XPBase+b.SL.XPSpread >= b.TP.XPBase {
		return fmt.Errorf("sl xp band must stay below tp xp band")
	}
	return nil
}

// RandomPolicy продакшн-политика с псевдослучайными наградами в Bands
type RandomPolicy struct {
	bands Bands
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewRandomPolicy создает политику с внедряемым источником случайности
func NewRandomPolicy(bands Bands, rng *rand.Rand) *RandomPolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomPolicy{bands: bands, rng: rng}
}

// Settle рассчитывает вознаграждение за исход
func (p *RandomPolicy) Settle(outcome string, confidence int) domain.Reward {
	p.mu.Lock()
	defer p.mu.Unlock()

	gas := float64(p.bands.Gas.Base + p.intn(p.bands.Gas.Spread))

	switch outcome {
	case domain.OutcomeTPHit:
		return domain.Reward{
			Bsai: float64(p.bands.TP.BsaiBase + p.intn(p.bands.TP.BsaiSpread) + confidence),
			XP:   int64(p.bands.TP.XPBase + p.intn(p.bands.TP.XPSpread)),
			Gas:  gas,
		}
	case domain.OutcomeSLHit:
		return domain.Reward{
			Bsai: 0,
			XP:   int64(p.bands.SL.XPBase + p.intn(p.bands.SL.XPSpread)),
			Gas:  gas,
		}
	default:
		return domain.Reward{Gas: gas}
	}
}

func (p *RandomPolicy) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.rng.Intn(n + 1)
}
