package repository

import (
	"fmt"
	"time"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/internal/storage/jsonstore"
)

// UserRepository реализует работу с записями игроков
type UserRepository struct {
	store *jsonstore.Store
}

// NewUserRepository создает новый репозиторий игроков
func NewUserRepository(store *jsonstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// Get возвращает игрока по id
func (r *UserRepository) Get(id string) (*domain.User, error) {
	var users []domain.User
	if err := r.store.Read(domain.CollectionUsers, &users); err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

// GetAll возвращает всех игроков
func (r *UserRepository) GetAll() ([]domain.User, error) {
	var users []domain.User
	if err := r.store.Read(domain.CollectionUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create добавляет нового игрока
func (r *UserRepository) Create(user *domain.User) error {
	var users []domain.User
	return r.store.Update(domain.CollectionUsers, &users, func() error {
		for i := range users {
			if users[i].ID == user.ID {
				return fmt.Errorf("user %s already exists: %w", user.ID, domain.ErrInvalidInput)
			}
		}
		now := time.Now()
		user.CreatedAt = now
		user.UpdatedAt = now
		if user.CompletedMissions == nil {
			user.CompletedMissions = []string{}
		}
		users = append(users, *user)
		return nil
	})
}

// Update перезаписывает запись игрока по id
func (r *UserRepository) Update(user *domain.User) error {
	var users []domain.User
	return r.store.Update(domain.CollectionUsers, &users, func() error {
		for i := range users {
			if users[i].ID == user.ID {
				user.UpdatedAt = time.Now()
				users[i] = *user
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	})
}
