package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// Catalog стартовый каталог консоли в YAML
type Catalog struct {
	Agents []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		Role   string `yaml:"role"`
		Status string `yaml:"status"`
	} `yaml:"agents"`
	Missions []struct {
		ID          string  `yaml:"id"`
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		RewardXP    int64   `yaml:"reward_xp"`
		RewardBsai  float64 `yaml:"reward_bsai"`
	} `yaml:"missions"`
}

// Run заполняет пустые коллекции каталогом и создает запись игрока,
// если ее еще нет. Повторные запуски ничего не меняют.
func Run(st *storage.Storage, userID, path string, logger *utils.Logger) error {
	catalog, err := loadCatalog(path)
	if err != nil {
		return err
	}

	agents := make([]domain.Agent, 0, len(catalog.Agents))
	for _, a := range catalog.Agents {
		status := a.Status
		if status == "" {
			status = domain.AgentIdle
		}
		agents = append(agents, domain.Agent{
			ID:     a.ID,
			Name:   a.Name,
			Role:   a.Role,
			Status: status,
		})
	}
	if err := st.Agents.Seed(agents); err != nil {
		return fmt.Errorf("failed to seed agents: %w", err)
	}

	missions := make([]domain.Mission, 0, len(catalog.Missions))
	for _, m := range catalog.Missions {
		missions = append(missions, domain.Mission{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			RewardXP:    m.RewardXP,
			RewardBsai:  m.RewardBsai,
			Enabled:     true,
		})
	}
	if err := st.Missions.Seed(missions); err != nil {
		return fmt.Errorf("failed to seed missions: %w", err)
	}

	// Игрок создается один раз при первом запуске
	if _, err := st.Users.Get(userID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		user := &domain.User{
			ID:            userID,
			ShadowBalance: 1000,
		}
		if err := st.Users.Create(user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", userID, err)
		}
		logger.Info("created user %s with starting balance %.0f SHADOW", userID, user.ShadowBalance)
	}

	return nil
}

// loadCatalog читает каталог из YAML; пустой путь — встроенный каталог
func loadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return defaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	return &catalog, nil
}

func defaultCatalog() *Catalog {
	var c Catalog
	c.Agents = []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		Role   string `yaml:"role"`
		Status string `yaml:"status"`
	}{
		{ID: "shadow-core", Name: "SHADOW Core", Role: "Market analysis", Status: domain.AgentActive},
		{ID: "scout", Name: "Scout", Role: "Sentiment sweep", Status: domain.AgentIdle},
		{ID: "chainwatch", Name: "Chainwatch", Role: "On-chain activity", Status: domain.AgentIdle},
	}
	c.Missions = []struct {
		ID          string  `yaml:"id"`
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		RewardXP    int64   `yaml:"reward_xp"`
		RewardBsai  float64 `yaml:"reward_bsai"`
	}{
		{ID: "first-signal", Title: "First Contact", Description: "Request your first signal", RewardXP: 100, RewardBsai: 50},
		{ID: "first-win", Title: "Blood In The Water", Description: "Hit a take profit", RewardXP: 250, RewardBsai: 100},
		{ID: "staker", Title: "Skin In The Game", Description: "Stake any amount of SHADOW", RewardXP: 150, RewardBsai: 25},
	}
	return &c
}
