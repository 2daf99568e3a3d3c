package repository

import (
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
)

// MissionRepository реализует каталог миссий
type MissionRepository struct {
	store *jsonstore.Store
}

// NewMissionRepository создает новый репозиторий миссий
func NewMissionRepository(store *jsonstore.Store) *MissionRepository {
	return &MissionRepository{store: store}
}

// Get возвращает миссию по id
func (r *MissionRepository) Get(id string) (*domain.Mission, error) {
	var missions []domain.Mission
	if err := r.store.Read(domain.CollectionMissions, &missions); err != nil {
		return nil, err
	}
	for i := range missions {
		if missions[i].ID == id {
			return &missions[i], nil
		}
	}
	return nil, fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
}

// GetAll возвращает весь каталог миссий
func (r *MissionRepository) GetAll() ([]domain.Mission, error) {
	var missions []domain.Mission
	if err := r.store.Read(domain.CollectionMissions, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// Seed заполняет пустой каталог; непустой остается как есть
func (r *MissionRepository) Seed(seed []domain.Mission) error {
	var missions []domain.Mission
	return r.store.Update(domain.CollectionMissions, &missions, func() error {
		if len(missions) == 0 {
			missions = append(missions, seed...)
		}
		return nil
	})
}
