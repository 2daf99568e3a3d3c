package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/ai"
	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/exchange"
	"github.com/LifeLane/Shadow-Console-sub000/internal/reward"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// InsightProvider генератор инсайтов (AI). Может вернуть ошибку —
// контроллер откатывается в idle с уведомлением, без частичного стейта.
type InsightProvider interface {
	RequestInsight(ctx context.Context, req ai.InsightRequest) (*domain.Insight, error)
}

// TradeRequest заявка пользователя на сигнал
type TradeRequest struct {
	Symbol    string `json:"symbol"`
	TradeMode string `json:"tradeMode"`
	Risk      string `json:"risk"`
}

// Event событие жизненного цикла для подписчиков (hub, уведомления)
type Event struct {
	Type      string          `json:"type"` // "state", "tick", "resolved", "error"
	State     string          `json:"state"`
	Symbol    string          `json:"symbol,omitempty"`
	Price     float64         `json:"price,omitempty"`
	Outcome   string          `json:"outcome,omitempty"`
	Insight   *domain.Insight `json:"insight,omitempty"`
	Reward    *domain.Reward  `json:"reward,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Snapshot текущее состояние контроллера для API
type Snapshot struct {
	State   string          `json:"state"`
	Request *TradeRequest   `json:"request,omitempty"`
	Insight *domain.Insight `json:"insight,omitempty"`
	Outcome string          `json:"outcome,omitempty"`
	Reward  *domain.Reward  `json:"reward,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// attempt рабочее состояние одной попытки; живет от заявки до ack
type attempt struct {
	request TradeRequest
	insight *domain.Insight
	outcome string
	reward  domain.Reward
	lastErr string
}

// Controller управляет жизненным циклом одного сигнала:
// idle -> simulating -> tracking -> resolved -> (ack) -> idle.
// Одновременно в работе не больше одной попытки; переходы строго
// последовательны внутри одной горутины run.
type Controller struct {
	cfg      config.LifecycleConfig
	userID   string
	insights InsightProvider
	oracle   exchange.PriceOracle
	signals  domain.SignalRepository
	policy   reward.Policy
	logger   *utils.Logger

	notifyFunc func(string)
	events     func(Event)

	mu      sync.Mutex
	state   string
	current *attempt
	cancel  context.CancelFunc
}

// New создает контроллер жизненного цикла
func New(
	cfg config.LifecycleConfig,
	userID string,
	insights InsightProvider,
	oracle exchange.PriceOracle,
	signals domain.SignalRepository,
	policy reward.Policy,
	logger *utils.Logger,
	notifyFunc func(string),
	events func(Event),
) *Controller {
	return &Controller{
		cfg:        cfg,
		userID:     userID,
		insights:   insights,
		oracle:     oracle,
		signals:    signals,
		policy:     policy,
		logger:     logger,
		notifyFunc: notifyFunc,
		events:     events,
		state:      domain.StateIdle,
	}
}

// Request принимает заявку и запускает попытку. Если заявка уже
// в работе, возвращает ErrSignalActive и ничего не меняет.
func (c *Controller) Request(req TradeRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("symbol is required: %w", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	if c.state != domain.StateIdle {
		c.mu.Unlock()
		return domain.ErrSignalActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.current = &attempt{request: req}
	c.state = domain.StateSimulating
	c.mu.Unlock()

	c.logger.Info("🧠 Signal requested: %s %s risk=%s", req.Symbol, req.TradeMode, req.Risk)
	c.emit(Event{Type: "state", State: domain.StateSimulating, Symbol: req.Symbol})

	go c.run(ctx, req)
	return nil
}

// run ведет одну попытку от генерации инсайта до расчета
func (c *Controller) run(ctx context.Context, req TradeRequest) {
	insight, err := c.insights.RequestInsight(ctx, ai.InsightRequest{
		Symbol:    req.Symbol,
		TradeMode: req.TradeMode,
		Risk:      req.Risk,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.failToIdle(fmt.Sprintf("insight generation failed: %v", err))
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.current.insight = insight
	c.state = domain.StateTracking
	c.mu.Unlock()

	c.logger.Info("📡 Tracking %s: %s, TP %s / SL %s (confidence %d)",
		req.Symbol, insight.Prediction, insight.TakeProfit, insight.StopLoss, insight.Confidence)
	c.emit(Event{Type: "state", State: domain.StateTracking, Symbol: req.Symbol, Insight: insight})

	// Пауза "размещения ордера" перед началом опроса
	settle := time.NewTimer(c.cfg.SettleDelay)
	select {
	case <-ctx.Done():
		settle.Stop()
		return
	case <-settle.C:
	}

	c.track(ctx, req, insight)
}

// track опрашивает источник цен до первого исхода
func (c *Controller) track(ctx context.Context, req TradeRequest, insight *domain.Insight) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		price, err := c.oracle.GetPrice(ctx, req.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Пропуск тика: нет цены — нет исхода
			c.logger.Debug("price poll miss for %s: %v", req.Symbol, err)
			continue
		}

		c.emit(Event{Type: "tick", State: domain.StateTracking, Symbol: req.Symbol, Price: price})

		stopLoss, err := ParseThreshold(insight.StopLoss)
		if err != nil {
			c.failToIdle(fmt.Sprintf("bad stop loss in insight: %v", err))
			return
		}
		takeProfit, err := ParseThreshold(insight.TakeProfit)
		if err != nil {
			c.failToIdle(fmt.Sprintf("bad take profit in insight: %v", err))
			return
		}

		outcome := EvaluateOutcome(insight.Prediction, price, stopLoss, takeProfit)
		if outcome == "" {
			continue
		}

		// Первый ненулевой исход финален: опрос прекращается
		c.settle(ctx, req, insight, outcome, price)
		return
	}
}

// settle фиксирует исход, считает награду и вызывает save-signal.
// Ошибка персистентности не блокирует пользователя: resolved
// выставляется по данным в памяти, уведомление уходит отдельно.
func (c *Controller) settle(ctx context.Context, req TradeRequest, insight *domain.Insight, outcome string, price float64) {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	rew := c.policy.Settle(outcome, insight.Confidence)
	c.current.outcome = outcome
	c.current.reward = rew

	_, saveErr := c.signals.Save(&domain.SignalDraft{
		UserID:      c.userID,
		Asset:       req.Symbol,
		Prediction:  insight.Prediction,
		TradeMode:   req.TradeMode,
		Outcome:     outcome,
		RewardBsai:  rew.Bsai,
		RewardXP:    rew.XP,
		GasPaid:     rew.Gas,
		EntryRange:  insight.EntryRange,
		StopLoss:    insight.StopLoss,
		TakeProfit:  insight.TakeProfit,
		Confidence:  insight.Confidence,
		ShadowScore: insight.ShadowScore,
	})
	if saveErr != nil {
		c.current.lastErr = "result could not be persisted, ledger may be inconsistent"
	}
	c.state = domain.StateResolved
	c.mu.Unlock()

	c.logger.Info("✅ Signal resolved: %s %s at %.2f (+%.0f BSAI, +%d XP)",
		req.Symbol, outcome, price, rew.Bsai, rew.XP)
	c.emit(Event{
		Type:    "resolved",
		State:   domain.StateResolved,
		Symbol:  req.Symbol,
		Price:   price,
		Outcome: outcome,
		Insight: insight,
		Reward:  &rew,
	})
	c.notify(fmt.Sprintf("🎯 %s %s: +%.0f BSAI, +%d XP (gas %.0f)",
		req.Symbol, outcome, rew.Bsai, rew.XP, rew.Gas))

	if saveErr != nil {
		c.logger.Error("save-signal failed, ledger may be inconsistent: %v", saveErr)
		c.notify(fmt.Sprintf("⚠️ result shown but not persisted: %v", saveErr))
	}
}

// failToIdle откатывает попытку в idle с уведомлением (ошибка
// восстановимая, пользователь может попробовать снова)
func (c *Controller) failToIdle(message string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = nil
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.logger.Warn("❌ %s", message)
	c.emit(Event{Type: "error", State: domain.StateIdle, Message: message})
	c.notify("⚠️ " + message)
}

// Acknowledge подтверждает показанный результат и возвращает машину
// в idle. Допустим только из resolved.
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	if c.state != domain.StateResolved {
		c.mu.Unlock()
		return domain.ErrNotResolved
	}
	c.resetLocked()
	c.mu.Unlock()

	c.emit(Event{Type: "state", State: domain.StateIdle})
	return nil
}

// Reset прерывает любую текущую попытку и возвращает машину в idle.
// Отменяет отложенный settle-таймер и опрос цены: ни один поздний
// тик не «дорешает» брошенный сигнал.
func (c *Controller) Reset() {
	c.mu.Lock()
	wasIdle := c.state == domain.StateIdle
	c.resetLocked()
	c.mu.Unlock()

	if !wasIdle {
		c.logger.Info("🛑 Signal attempt reset")
		c.emit(Event{Type: "state", State: domain.StateIdle})
	}
}

// Close останавливает контроллер (размонтирование хоста)
func (c *Controller) Close() {
	c.Reset()
}

// resetLocked чистит рабочее состояние; вызывается под mu
func (c *Controller) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = nil
	c.state = domain.StateIdle
}

// State возвращает текущее состояние машины
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot возвращает копию текущего состояния для API
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state}
	if c.current != nil {
		req := c.current.request
		snap.Request = &req
		snap.Insight = c.current.insight
		snap.Outcome = c.current.outcome
		if c.current.outcome != "" {
			rew := c.current.reward
			snap.Reward = &rew
		}
		snap.Error = c.current.lastErr
	}
	return snap
}

func (c *Controller) emit(event Event) {
	if c.events == nil {
		return
	}
	event.Timestamp = time.Now()
	c.events(event)
}

func (c *Controller) notify(message string) {
	if c.notifyFunc != nil {
		c.notifyFunc(message)
	}
}
