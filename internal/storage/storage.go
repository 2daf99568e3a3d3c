package storage

import (
	"fmt"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/repository"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// Storage является фасадом над репозиториями выбранного бэкенда.
// Контроллер и менеджеры работают только с интерфейсами domain,
// поэтому бэкенд (JSON-файлы или PostgreSQL) взаимозаменяем.
type Storage struct {
	Users    domain.UserRepository
	Signals  domain.SignalRepository
	Missions domain.MissionRepository
	Agents   domain.AgentRepository

	closeFn func() error
}

// New создает хранилище по конфигурации
func New(cfg *config.Config, logger *utils.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case domain.StorageJSON:
		return NewJSON(cfg.Storage.DataDir, logger)
	case domain.StoragePostgres:
		return NewPostgres(cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewJSON создает хранилище поверх JSON-коллекций в dataDir
func NewJSON(dataDir string, logger *utils.Logger) (*Storage, error) {
	store, err := jsonstore.New(dataDir)
	if err != nil {
		return nil, err
	}

	return &Storage{
		Users:    repository.NewUserRepository(store),
		Signals:  repository.NewSignalRepository(store, logger),
		Missions: repository.NewMissionRepository(store),
		Agents:   repository.NewAgentRepository(store),
		closeFn:  func() error { return nil },
	}, nil
}

// Close освобождает ресурсы бэкенда
func (s *Storage) Close() error {
	return s.closeFn()
}
