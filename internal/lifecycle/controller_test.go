package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/ai"
	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/repository"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

type fakeInsights struct {
	insight *domain.Insight
	err     error
	block   chan struct{} // если задан, RequestInsight ждет закрытия
}

func (f *fakeInsights) RequestInsight(ctx context.Context, req ai.InsightRequest) (*domain.Insight, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.insight, nil
}

type fakeOracle struct {
	mu     sync.Mutex
	prices []float64 // последняя цена повторяется
	misses int       // столько первых опросов возвращают ошибку
	calls  int
}

func (f *fakeOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.misses {
		return 0, domain.ErrOracleAPI
	}
	idx := f.calls - f.misses - 1
	if idx >= len(f.prices) {
		idx = len(f.prices) - 1
	}
	return f.prices[idx], nil
}

type fakeSignals struct {
	mu    sync.Mutex
	saved []domain.SignalDraft
	err   error
}

func (f *fakeSignals) Save(draft *domain.SignalDraft) (*domain.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, *draft)
	return &domain.Signal{ID: int64(len(f.saved))}, nil
}

func (f *fakeSignals) GetRecent(userID string, limit int) ([]domain.Signal, error) {
	return nil, nil
}

func (f *fakeSignals) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fixedPolicy struct{}

func (fixedPolicy) Settle(outcome string, confidence int) domain.Reward {
	if outcome == domain.OutcomeTPHit {
		return domain.Reward{Bsai: 100, XP: 50, Gas: 2}
	}
	return domain.Reward{Bsai: 0, XP: 5, Gas: 2}
}

func testInsight() *domain.Insight {
	return &domain.Insight{
		Prediction:  domain.PredictionBuy,
		Confidence:  80,
		EntryRange:  "$25,200 - $25,500",
		StopLoss:    "$24,800",
		TakeProfit:  "$26,200",
		ShadowScore: 70,
	}
}

func testController(insights InsightProvider, oracle *fakeOracle, signals *fakeSignals) *Controller {
	cfg := config.LifecycleConfig{
		SettleDelay:  time.Millisecond,
		PollInterval: time.Millisecond,
	}
	return New(cfg, "user-1", insights, oracle, signals, fixedPolicy{}, utils.NewLogger("error"), nil, nil)
}

func waitForState(t *testing.T, c *Controller, state string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == state {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("controller never reached state %s, stuck in %s", state, c.State())
}

func TestController_ResolvesTakeProfit(t *testing.T) {
	oracle := &fakeOracle{prices: []float64{25500, 26300}}
	signals := &fakeSignals{}
	c := testController(&fakeInsights{insight: testInsight()}, oracle, signals)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT", TradeMode: "Scalper", Risk: "Low"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	waitForState(t, c, domain.StateResolved)

	if got := signals.count(); got != 1 {
		t.Fatalf("expected exactly 1 saved signal, got %d", got)
	}
	draft := signals.saved[0]
	if draft.Outcome != domain.OutcomeTPHit {
		t.Errorf("outcome = %s, want %s", draft.Outcome, domain.OutcomeTPHit)
	}
	if draft.UserID != "user-1" || draft.Asset != "BTCUSDT" {
		t.Errorf("draft owner/asset = %s/%s", draft.UserID, draft.Asset)
	}
	if draft.RewardBsai != 100 || draft.RewardXP != 50 {
		t.Errorf("reward = %.0f BSAI / %d XP, want 100/50", draft.RewardBsai, draft.RewardXP)
	}
	if draft.StopLoss != "$24,800" || draft.TakeProfit != "$26,200" {
		t.Errorf("thresholds not preserved verbatim: %q / %q", draft.StopLoss, draft.TakeProfit)
	}

	snap := c.Snapshot()
	if snap.Outcome != domain.OutcomeTPHit || snap.Reward == nil {
		t.Errorf("snapshot = %+v, want resolved with reward", snap)
	}

	if err := c.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if c.State() != domain.StateIdle {
		t.Errorf("state after ack = %s, want idle", c.State())
	}
	if err := c.Acknowledge(); !errors.Is(err, domain.ErrNotResolved) {
		t.Errorf("second ack error = %v, want ErrNotResolved", err)
	}

	// Поздних сохранений быть не должно
	time.Sleep(20 * time.Millisecond)
	if got := signals.count(); got != 1 {
		t.Errorf("late save detected: %d signals", got)
	}
}

func TestController_ResolvesStopLossForSell(t *testing.T) {
	insight := testInsight()
	insight.Prediction = domain.PredictionSell
	insight.StopLoss = "$26,200"
	insight.TakeProfit = "$24,800"

	oracle := &fakeOracle{prices: []float64{26300}}
	signals := &fakeSignals{}
	c := testController(&fakeInsights{insight: insight}, oracle, signals)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "ETHUSDT"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	waitForState(t, c, domain.StateResolved)

	if signals.count() != 1 {
		t.Fatalf("expected 1 saved signal, got %d", signals.count())
	}
	if signals.saved[0].Outcome != domain.OutcomeSLHit {
		t.Errorf("outcome = %s, want %s", signals.saved[0].Outcome, domain.OutcomeSLHit)
	}
}

func TestController_RejectsSecondRequest(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	c := testController(&fakeInsights{insight: testInsight(), block: block}, &fakeOracle{prices: []float64{25500}}, &fakeSignals{})
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("first Request failed: %v", err)
	}
	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); !errors.Is(err, domain.ErrSignalActive) {
		t.Errorf("second Request error = %v, want ErrSignalActive", err)
	}
}

func TestController_RejectsEmptySymbol(t *testing.T) {
	c := testController(&fakeInsights{insight: testInsight()}, &fakeOracle{prices: []float64{1}}, &fakeSignals{})
	defer c.Close()

	if err := c.Request(TradeRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Request error = %v, want ErrInvalidInput", err)
	}
}

func TestController_ResetCancelsTracking(t *testing.T) {
	// Цена между порогами: исхода нет, опрос крутится до Reset
	oracle := &fakeOracle{prices: []float64{25500}}
	signals := &fakeSignals{}
	c := testController(&fakeInsights{insight: testInsight()}, oracle, signals)

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	waitForState(t, c, domain.StateTracking)

	c.Reset()
	if c.State() != domain.StateIdle {
		t.Fatalf("state after reset = %s, want idle", c.State())
	}

	time.Sleep(20 * time.Millisecond)
	if got := signals.count(); got != 0 {
		t.Errorf("canceled attempt saved %d signals, want 0", got)
	}

	// После reset машина принимает новую заявку
	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Errorf("Request after reset failed: %v", err)
	}
	c.Close()
}

func TestController_InsightFailureReturnsToIdle(t *testing.T) {
	signals := &fakeSignals{}
	c := testController(&fakeInsights{err: errors.New("model overloaded")}, &fakeOracle{prices: []float64{1}}, signals)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	waitForState(t, c, domain.StateIdle)
	if signals.count() != 0 {
		t.Errorf("failed attempt saved %d signals, want 0", signals.count())
	}
}

func TestController_OracleMissSkipsTick(t *testing.T) {
	oracle := &fakeOracle{prices: []float64{26300}, misses: 3}
	signals := &fakeSignals{}
	c := testController(&fakeInsights{insight: testInsight()}, oracle, signals)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	waitForState(t, c, domain.StateResolved)
	if signals.count() != 1 {
		t.Errorf("expected 1 saved signal after misses, got %d", signals.count())
	}
}

func TestController_EndToEndWithJSONStore(t *testing.T) {
	store, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	users := repository.NewUserRepository(store)
	signals := repository.NewSignalRepository(store, utils.NewLogger("error"))

	if err := users.Create(&domain.User{ID: "user-1", XP: 10, ShadowBalance: 1000}); err != nil {
		t.Fatal(err)
	}

	cfg := config.LifecycleConfig{SettleDelay: time.Millisecond, PollInterval: time.Millisecond}
	oracle := &fakeOracle{prices: []float64{26300}}
	c := New(cfg, "user-1", &fakeInsights{insight: testInsight()}, oracle, signals, fixedPolicy{}, utils.NewLogger("error"), nil, nil)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT", Risk: "Medium"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	waitForState(t, c, domain.StateResolved)

	history, err := signals.GetRecent("user-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	sig := history[0]
	if sig.ID != 1 || sig.Outcome != domain.OutcomeTPHit || sig.RewardBsai <= 0 {
		t.Errorf("saved signal = %+v", sig)
	}

	user, err := users.Get("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.SignalsGenerated != 1 || user.SignalsWon != 1 {
		t.Errorf("ledger: generated=%d won=%d, want 1/1", user.SignalsGenerated, user.SignalsWon)
	}
	if user.XP != 10+sig.RewardXP {
		t.Errorf("xp = %d, want %d", user.XP, 10+sig.RewardXP)
	}
	if user.BsaiEarned != sig.RewardBsai {
		t.Errorf("bsaiEarned = %.0f, want %.0f", user.BsaiEarned, sig.RewardBsai)
	}

	snap := c.Snapshot()
	if snap.Reward == nil || snap.Reward.Bsai != sig.RewardBsai {
		t.Errorf("snapshot reward diverges from persisted: %+v vs %.0f", snap.Reward, sig.RewardBsai)
	}
}

func TestController_ResolvedDespiteSaveFailure(t *testing.T) {
	oracle := &fakeOracle{prices: []float64{26300}}
	signals := &fakeSignals{err: errors.New("disk full")}
	c := testController(&fakeInsights{insight: testInsight()}, oracle, signals)
	defer c.Close()

	if err := c.Request(TradeRequest{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	waitForState(t, c, domain.StateResolved)

	snap := c.Snapshot()
	if snap.Error == "" {
		t.Errorf("snapshot error empty, persistence failure should surface")
	}
	if snap.Outcome != domain.OutcomeTPHit {
		t.Errorf("outcome = %s, want %s", snap.Outcome, domain.OutcomeTPHit)
	}
}
