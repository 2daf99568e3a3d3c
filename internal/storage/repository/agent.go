package repository

import (
	"fmt"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
)

// AgentRepository реализует каталог агентов
type AgentRepository struct {
	store *jsonstore.Store
}

// NewAgentRepository создает новый репозиторий агентов
func NewAgentRepository(store *jsonstore.Store) *AgentRepository {
	return &AgentRepository{store: store}
}

// GetAll возвращает весь каталог агентов
func (r *AgentRepository) GetAll() ([]domain.Agent, error) {
	var agents []domain.Agent
	if err := r.store.Read(domain.CollectionAgents, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// SetStatus обновляет статус агента
func (r *AgentRepository) SetStatus(id, status string) error {
	switch status {
	case domain.AgentActive, domain.AgentIdle, domain.AgentOffline:
	default:
		return fmt.Errorf("unknown agent status %q: %w", status, domain.ErrInvalidInput)
	}

	var agents []domain.Agent
	return r.store.Update(domain.CollectionAgents, &agents, func() error {
		for i := range agents {
			if agents[i].ID == id {
				agents[i].Status = status
				agents[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	})
}

// Seed заполняет пустой каталог; непустой остается как есть
func (r *AgentRepository) Seed(seed []domain.Agent) error {
	var agents []domain.Agent
	return r.store.Update(domain.CollectionAgents, &agents, func() error {
		if len(agents) == 0 {
			agents = append(agents, seed...)
		}
		return nil
	})
}
