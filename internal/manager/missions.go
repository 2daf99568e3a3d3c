package manager

import (
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// MissionManager ведет выполнение миссий игроками
type MissionManager struct {
	users    domain.UserRepository
	missions domain.MissionRepository
	logger   *utils.Logger
}

// NewMissionManager создает новый менеджер миссий
func NewMissionManager(users domain.UserRepository, missions domain.MissionRepository, logger *utils.Logger) *MissionManager {
	return &MissionManager{users: users, missions: missions, logger: logger}
}

// Complete зачисляет награду за миссию. Повторное выполнение —
// no-op: XP начисляется ровно один раз на пару (игрок, миссия).
func (m *MissionManager) Complete(userID, missionID string) (*domain.User, error) {
	mission, err := m.missions.Get(missionID)
	if err != nil {
		return nil, err
	}
	if !mission.Enabled {
		return nil, fmt.Errorf("mission %s is disabled: %w", missionID, domain.ErrInvalidInput)
	}

	user, err := m.users.Get(userID)
	if err != nil {
		return nil, err
	}

	if user.HasCompletedMission(missionID) {
		m.logger.Debug("mission %s already completed by %s", missionID, userID)
		return user, nil
	}

	user.CompletedMissions = append(user.CompletedMissions, missionID)
	user.XP += mission.RewardXP
	user.BsaiEarned += mission.RewardBsai

	if err := m.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to persist mission completion: %w", err)
	}

	m.logger.Info("🏅 Mission %s completed by %s (+%d XP, +%.0f BSAI)",
		missionID, userID, mission.RewardXP, mission.RewardBsai)
	return user, nil
}
