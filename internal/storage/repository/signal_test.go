package repository

import (
	"errors"
	"testing"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

func newTestStore(t *testing.T) *jsonstore.Store {
	t.Helper()
	store, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func tpDraft(userID string) *domain.SignalDraft {
	return &domain.SignalDraft{
		UserID:     userID,
		Asset:      "BTCUSDT",
		Prediction: domain.PredictionBuy,
		TradeMode:  "Scalper",
		Outcome:    domain.OutcomeTPHit,
		RewardBsai: 100,
		RewardXP:   50,
		GasPaid:    2,
		StopLoss:   "$24,800",
		TakeProfit: "$26,200",
		Confidence: 80,
	}
}

func TestSignalRepository_SaveAssignsMonotonicIDs(t *testing.T) {
	store := newTestStore(t)
	users := NewUserRepository(store)
	signals := NewSignalRepository(store, utils.NewLogger("error"))

	if err := users.Create(&domain.User{ID: "u1"}); err != nil {
		t.Fatal(err)
	}

	for want := int64(1); want <= 3; want++ {
		sig, err := signals.Save(tpDraft("u1"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if sig.ID != want {
			t.Errorf("signal id = %d, want %d", sig.ID, want)
		}
		if sig.CreatedAt.IsZero() {
			t.Errorf("signal %d has zero createdAt", sig.ID)
		}
	}
}

func TestSignalRepository_SaveUpdatesLedger(t *testing.T) {
	store := newTestStore(t)
	users := NewUserRepository(store)
	signals := NewSignalRepository(store, utils.NewLogger("error"))

	if err := users.Create(&domain.User{ID: "u1", XP: 10}); err != nil {
		t.Fatal(err)
	}

	if _, err := signals.Save(tpDraft("u1")); err != nil {
		t.Fatal(err)
	}

	slDraft := tpDraft("u1")
	slDraft.Outcome = domain.OutcomeSLHit
	slDraft.RewardBsai = 0
	slDraft.RewardXP = 7
	if _, err := signals.Save(slDraft); err != nil {
		t.Fatal(err)
	}

	user, err := users.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.SignalsGenerated != 2 {
		t.Errorf("signalsGenerated = %d, want 2", user.SignalsGenerated)
	}
	if user.SignalsWon != 1 {
		t.Errorf("signalsWon = %d, want 1", user.SignalsWon)
	}
	if user.SignalsWon > user.SignalsGenerated {
		t.Errorf("signalsWon %d exceeds signalsGenerated %d", user.SignalsWon, user.SignalsGenerated)
	}
	if user.BsaiEarned != 100 {
		t.Errorf("bsaiEarned = %.0f, want 100", user.BsaiEarned)
	}
	if user.XP != 10+50+7 {
		t.Errorf("xp = %d, want 67", user.XP)
	}
}

func TestSignalRepository_SaveMissingUserIsBestEffort(t *testing.T) {
	store := newTestStore(t)
	signals := NewSignalRepository(store, utils.NewLogger("error"))

	sig, err := signals.Save(tpDraft("ghost"))
	if err != nil {
		t.Fatalf("Save without user failed: %v", err)
	}
	if sig.ID != 1 {
		t.Errorf("signal id = %d, want 1", sig.ID)
	}

	history, err := signals.GetRecent("ghost", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}
}

func TestSignalRepository_GetRecent(t *testing.T) {
	store := newTestStore(t)
	users := NewUserRepository(store)
	signals := NewSignalRepository(store, utils.NewLogger("error"))

	if err := users.Create(&domain.User{ID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := users.Create(&domain.User{ID: "u2"}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := signals.Save(tpDraft("u1")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := signals.Save(tpDraft("u2")); err != nil {
		t.Fatal(err)
	}

	recent, err := signals.GetRecent("u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("limit ignored: got %d signals", len(recent))
	}
	// Новые первыми
	if recent[0].ID <= recent[1].ID {
		t.Errorf("history not newest first: %d then %d", recent[0].ID, recent[1].ID)
	}
	for _, sig := range recent {
		if sig.UserID != "u1" {
			t.Errorf("foreign signal %d in history for u1", sig.ID)
		}
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	store := newTestStore(t)
	users := NewUserRepository(store)

	if _, err := users.Get("absent"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get absent user error = %v, want ErrNotFound", err)
	}

	user := &domain.User{ID: "u1", ShadowBalance: 1000}
	if err := users.Create(user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := users.Create(&domain.User{ID: "u1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("duplicate Create error = %v, want ErrInvalidInput", err)
	}

	user.XP = 25
	if err := users.Update(user); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := users.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.XP != 25 || got.ShadowBalance != 1000 {
		t.Errorf("user after update = %+v", got)
	}
	if got.CompletedMissions == nil {
		t.Errorf("completedMissions not initialized to empty slice")
	}
}

func TestMissionRepository_SeedOnlyWhenEmpty(t *testing.T) {
	store := newTestStore(t)
	missions := NewMissionRepository(store)

	seed := []domain.Mission{{ID: "m1", Title: "First Signal", RewardXP: 50, Enabled: true}}
	if err := missions.Seed(seed); err != nil {
		t.Fatal(err)
	}

	// Повторный Seed не перетирает каталог
	if err := missions.Seed([]domain.Mission{{ID: "m2"}}); err != nil {
		t.Fatal(err)
	}

	all, err := missions.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "m1" {
		t.Errorf("catalog = %+v, want only m1", all)
	}
}

func TestAgentRepository_SetStatus(t *testing.T) {
	store := newTestStore(t)
	agents := NewAgentRepository(store)

	if err := agents.Seed([]domain.Agent{{ID: "a1", Name: "SHADOW Core", Status: domain.AgentIdle}}); err != nil {
		t.Fatal(err)
	}

	if err := agents.SetStatus("a1", domain.AgentActive); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := agents.SetStatus("a1", "SLEEPING"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unknown status error = %v, want ErrInvalidInput", err)
	}
	if err := agents.SetStatus("ghost", domain.AgentActive); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing agent error = %v, want ErrNotFound", err)
	}

	all, err := agents.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	if all[0].Status != domain.AgentActive {
		t.Errorf("status = %s, want %s", all[0].Status, domain.AgentActive)
	}
}
