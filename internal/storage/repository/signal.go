package repository

import (
	"fmt"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// SignalRepository реализует историю сигналов поверх document store.
// Save — операция save-signal: одной точкой входа добавляет запись
// в коллекцию сигналов и обновляет агрегаты владельца.
type SignalRepository struct {
	store  *jsonstore.Store
	logger *utils.Logger
}

// NewSignalRepository создает новый репозиторий сигналов
func NewSignalRepository(store *jsonstore.Store, logger *utils.Logger) *SignalRepository {
	return &SignalRepository{store: store, logger: logger}
}

// Save добавляет сигнал (id = max+1, createdAt = now) и обновляет
// статистику игрока. Отсутствие игрока — не ошибка: история сигналов
// сохраняется, пропуск бухгалтерии логируется.
//
// Запись идет в две коллекции последовательно, без компенсации: если
// коллекция сигналов записалась, а коллекция игроков — нет, сигнал
// остается. Это осознанное поведение, не тихая потеря данных.
func (r *SignalRepository) Save(draft *domain.SignalDraft) (*domain.Signal, error) {
	var signal *domain.Signal

	var signals []domain.Signal
	err := r.store.Update(domain.CollectionSignals, &signals, func() error {
		var maxID int64
		for _, s := range signals {
			if s.ID > maxID {
				maxID = s.ID
			}
		}

		signal = &domain.Signal{
			ID:          maxID + 1,
			UserID:      draft.UserID,
			Asset:       draft.Asset,
			Prediction:  draft.Prediction,
			TradeMode:   draft.TradeMode,
			Outcome:     draft.Outcome,
			RewardBsai:  draft.RewardBsai,
			RewardXP:    draft.RewardXP,
			GasPaid:     draft.GasPaid,
			EntryRange:  draft.EntryRange,
			StopLoss:    draft.StopLoss,
			TakeProfit:  draft.TakeProfit,
			Confidence:  draft.Confidence,
			ShadowScore: draft.ShadowScore,
			CreatedAt:   time.Now(),
		}
		signals = append(signals, *signal)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save signal: %w", err)
	}

	if err := r.applyReward(draft); err != nil {
		return nil, fmt.Errorf("signal %d saved, but user ledger update failed: %w", signal.ID, err)
	}

	return signal, nil
}

// applyReward применяет правила reward ledger к агрегатам игрока
func (r *SignalRepository) applyReward(draft *domain.SignalDraft) error {
	var users []domain.User
	return r.store.Update(domain.CollectionUsers, &users, func() error {
		for i := range users {
			if users[i].ID != draft.UserID {
				continue
			}
			users[i].SignalsGenerated++
			if draft.Outcome == domain.OutcomeTPHit {
				users[i].SignalsWon++
			}
			users[i].BsaiEarned += draft.RewardBsai
			users[i].XP += draft.RewardXP
			users[i].UpdatedAt = time.Now()
			return nil
		}
		// Игрок не найден: сигнал уже записан, бухгалтерию пропускаем
		r.logger.Warn("user %s not found, skipping ledger update", draft.UserID)
		return nil
	})
}

// GetRecent возвращает последние limit сигналов игрока, новые первыми
func (r *SignalRepository) GetRecent(userID string, limit int) ([]domain.Signal, error) {
	var signals []domain.Signal
	if err := r.store.Read(domain.CollectionSignals, &signals); err != nil {
		return nil, err
	}

	var result []domain.Signal
	for i := len(signals) - 1; i >= 0; i-- {
		if userID != "" && signals[i].UserID != userID {
			continue
		}
		result = append(result, signals[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
