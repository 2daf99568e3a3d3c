package domain

// UserRepository определяет интерфейс для работы с записями игроков
type UserRepository interface {
	Get(id string) (*User, error)
	GetAll() ([]User, error)
	Update(user *User) error
	Create(user *User) error
}

// SignalRepository определяет интерфейс для работы с историей сигналов.
// Save реализует контракт save-signal: добавляет запись в коллекцию
// сигналов и обновляет агрегаты владельца одним вызовом.
type SignalRepository interface {
	Save(draft *SignalDraft) (*Signal, error)
	GetRecent(userID string, limit int) ([]Signal, error)
}

// MissionRepository определяет интерфейс для каталога миссий.
// Seed заполняет пустой каталог и ничего не делает для непустого.
type MissionRepository interface {
	Get(id string) (*Mission, error)
	GetAll() ([]Mission, error)
	Seed(missions []Mission) error
}

// AgentRepository определяет интерфейс для каталога агентов
type AgentRepository interface {
	GetAll() ([]Agent, error)
	SetStatus(id, status string) error
	Seed(agents []Agent) error
}
