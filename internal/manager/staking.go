package manager

import (
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// StakingManager переводит SHADOW между свободным балансом и стейком.
// Баланс проверяется до перевода; суммарный объем на записи игрока
// не меняется.
type StakingManager struct {
	users  domain.UserRepository
	logger *utils.Logger
}

// NewStakingManager создает новый менеджер стейкинга
func NewStakingManager(users domain.UserRepository, logger *utils.Logger) *StakingManager {
	return &StakingManager{users: users, logger: logger}
}

// Stake переводит amount из shadowBalance в stakedAmount
func (m *StakingManager) Stake(userID string, amount float64) (*domain.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("stake amount must be positive: %w", domain.ErrInvalidInput)
	}

	user, err := m.users.Get(userID)
	if err != nil {
		return nil, err
	}

	if user.ShadowBalance < amount {
		return nil, fmt.Errorf("stake %.2f exceeds balance %.2f: %w",
			amount, user.ShadowBalance, domain.ErrInsufficientBalance)
	}

	user.ShadowBalance -= amount
	user.StakedAmount += amount

	if err := m.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to persist stake: %w", err)
	}

	m.logger.Info("🔒 %s staked %.2f SHADOW (free %.2f, staked %.2f)",
		userID, amount, user.ShadowBalance, user.StakedAmount)
	return user, nil
}

// Unstake переводит amount из stakedAmount обратно в shadowBalance
func (m *StakingManager) Unstake(userID string, amount float64) (*domain.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("unstake amount must be positive: %w", domain.ErrInvalidInput)
	}

	user, err := m.users.Get(userID)
	if err != nil {
		return nil, err
	}

	if user.StakedAmount < amount {
		return nil, fmt.Errorf("unstake %.2f exceeds staked %.2f: %w",
			amount, user.StakedAmount, domain.ErrInsufficientBalance)
	}

	user.StakedAmount -= amount
	user.ShadowBalance += amount

	if err := m.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to persist unstake: %w", err)
	}

	m.logger.Info("🔓 %s unstaked %.2f SHADOW (free %.2f, staked %.2f)",
		userID, amount, user.ShadowBalance, user.StakedAmount)
	return user, nil
}
