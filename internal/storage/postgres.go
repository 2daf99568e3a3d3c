package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/LifeLane/Shadow-Console-sub000/internal/config"
	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// NewPostgres создает хранилище поверх PostgreSQL.
// Схема повторяет JSON-коллекции один к одному; save-signal сохраняет
// ту же best-effort семантику (две последовательные записи без
// транзакции), чтобы поведение не расходилось с файловым бэкендом.
func NewPostgres(cfg config.DatabaseConfig, logger *utils.Logger) (*Storage, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Настройка connection pool из конфигурации
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storage{
		Users:    &pgUserRepository{db: db},
		Signals:  &pgSignalRepository{db: db, logger: logger},
		Missions: &pgMissionRepository{db: db},
		Agents:   &pgAgentRepository{db: db},
		closeFn:  db.Close,
	}, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			xp BIGINT NOT NULL DEFAULT 0,
			signals_generated BIGINT NOT NULL DEFAULT 0,
			signals_won BIGINT NOT NULL DEFAULT 0,
			bsai_earned DECIMAL(20, 8) NOT NULL DEFAULT 0,
			shadow_balance DECIMAL(20, 8) NOT NULL DEFAULT 0,
			staked_amount DECIMAL(20, 8) NOT NULL DEFAULT 0,
			wallet_address VARCHAR(128) NOT NULL DEFAULT '',
			wallet_chain VARCHAR(32) NOT NULL DEFAULT '',
			completed_missions TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			asset VARCHAR(20) NOT NULL,
			prediction VARCHAR(10) NOT NULL,
			trade_mode VARCHAR(20) NOT NULL,
			outcome VARCHAR(10) NOT NULL,
			reward_bsai DECIMAL(20, 8) NOT NULL DEFAULT 0,
			reward_xp BIGINT NOT NULL DEFAULT 0,
			gas_paid DECIMAL(20, 8) NOT NULL DEFAULT 0,
			entry_range VARCHAR(64) NOT NULL DEFAULT '',
			stop_loss VARCHAR(64) NOT NULL DEFAULT '',
			take_profit VARCHAR(64) NOT NULL DEFAULT '',
			confidence INTEGER NOT NULL DEFAULT 0,
			shadow_score INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS missions (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			reward_xp BIGINT NOT NULL DEFAULT 0,
			reward_bsai DECIMAL(20, 8) NOT NULL DEFAULT 0,
			enabled BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			role VARCHAR(128) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'IDLE',
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Users ====================

type pgUserRepository struct {
	db *sql.DB
}

const userColumns = `id, xp, signals_generated, signals_won, bsai_earned, shadow_balance,
	staked_amount, wallet_address, wallet_chain, completed_missions, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.XP,
		&u.SignalsGenerated,
		&u.SignalsWon,
		&u.BsaiEarned,
		&u.ShadowBalance,
		&u.StakedAmount,
		&u.WalletAddress,
		&u.WalletChain,
		pq.Array(&u.CompletedMissions),
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *pgUserRepository) Get(id string) (*domain.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return user, err
}

func (r *pgUserRepository) GetAll() ([]domain.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) Create(user *domain.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.CompletedMissions == nil {
		user.CompletedMissions = []string{}
	}
	_, err := r.db.Exec(`
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID, user.XP, user.SignalsGenerated, user.SignalsWon, user.BsaiEarned,
		user.ShadowBalance, user.StakedAmount, user.WalletAddress, user.WalletChain,
		pq.Array(user.CompletedMissions), user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *pgUserRepository) Update(user *domain.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE users SET xp = $2, signals_generated = $3, signals_won = $4,
			bsai_earned = $5, shadow_balance = $6, staked_amount = $7,
			wallet_address = $8, wallet_chain = $9, completed_missions = $10,
			updated_at = $11
		WHERE id = $1
	`,
		user.ID, user.XP, user.SignalsGenerated, user.SignalsWon, user.BsaiEarned,
		user.ShadowBalance, user.StakedAmount, user.WalletAddress, user.WalletChain,
		pq.Array(user.CompletedMissions), user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

// ==================== Signals ====================

type pgSignalRepository struct {
	db     *sql.DB
	logger *utils.Logger
}

func (r *pgSignalRepository) Save(draft *domain.SignalDraft) (*domain.Signal, error) {
	signal := &domain.Signal{
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

	err := r.db.QueryRow(`
		INSERT INTO signals (user_id, asset, prediction, trade_mode, outcome,
			reward_bsai, reward_xp, gas_paid, entry_range, stop_loss, take_profit,
			confidence, shadow_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`,
		signal.UserID, signal.Asset, signal.Prediction, signal.TradeMode, signal.Outcome,
		signal.RewardBsai, signal.RewardXP, signal.GasPaid, signal.EntryRange,
		signal.StopLoss, signal.TakeProfit, signal.Confidence, signal.ShadowScore,
		signal.CreatedAt,
	).Scan(&signal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save signal: %w", err)
	}

	won := 0
	if draft.Outcome == domain.OutcomeTPHit {
		won = 1
	}
	res, err := r.db.Exec(`
		UPDATE users SET signals_generated = signals_generated + 1,
			signals_won = signals_won + $2,
			bsai_earned = bsai_earned + $3,
			xp = xp + $4,
			updated_at = NOW()
		WHERE id = $1
	`, draft.UserID, won, draft.RewardBsai, draft.RewardXP)
	if err != nil {
		return nil, fmt.Errorf("signal %d saved, but user ledger update failed: %w", signal.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Warn("user %s not found, skipping ledger update", draft.UserID)
	}

	return signal, nil
}

func (r *pgSignalRepository) GetRecent(userID string, limit int) ([]domain.Signal, error) {
	query := `
		SELECT id, user_id, asset, prediction, trade_mode, outcome, reward_bsai,
			reward_xp, gas_paid, entry_range, stop_loss, take_profit,
			confidence, shadow_score, created_at
		FROM signals
	`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var s domain.Signal
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Asset, &s.Prediction, &s.TradeMode, &s.Outcome,
			&s.RewardBsai, &s.RewardXP, &s.GasPaid, &s.EntryRange, &s.StopLoss,
			&s.TakeProfit, &s.Confidence, &s.ShadowScore, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

// ==================== Missions ====================

type pgMissionRepository struct {
	db *sql.DB
}

func (r *pgMissionRepository) Get(id string) (*domain.Mission, error) {
	var m domain.Mission
	err := r.db.QueryRow(`
		SELECT id, title, description, reward_xp, reward_bsai, enabled
		FROM missions WHERE id = $1
	`, id).Scan(&m.ID, &m.Title, &m.Description, &m.RewardXP, &m.RewardBsai, &m.Enabled)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgMissionRepository) GetAll() ([]domain.Mission, error) {
	rows, err := r.db.Query(`SELECT id, title, description, reward_xp, reward_bsai, enabled FROM missions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var m domain.Mission
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.RewardXP, &m.RewardBsai, &m.Enabled); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func (r *pgMissionRepository) Seed(seed []domain.Mission) error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM missions`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, m := range seed {
		_, err := r.db.Exec(`
			INSERT INTO missions (id, title, description, reward_xp, reward_bsai, enabled)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, m.ID, m.Title, m.Description, m.RewardXP, m.RewardBsai, m.Enabled)
		if err != nil {
			return err
		}
	}
	return nil
}

// ==================== Agents ====================

type pgAgentRepository struct {
	db *sql.DB
}

func (r *pgAgentRepository) GetAll() ([]domain.Agent, error) {
	rows, err := r.db.Query(`SELECT id, name, role, status, updated_at FROM agents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.Status, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *pgAgentRepository) SetStatus(id, status string) error {
	switch status {
	case domain.AgentActive, domain.AgentIdle, domain.AgentOffline:
	default:
		return fmt.Errorf("unknown agent status %q: %w", status, domain.ErrInvalidInput)
	}

	res, err := r.db.Exec(`UPDATE agents SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *pgAgentRepository) Seed(seed []domain.Agent) error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM agents`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, a := range seed {
		_, err := r.db.Exec(`
			INSERT INTO agents (id, name, role, status, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (id) DO NOTHING
		`, a.ID, a.Name, a.Role, a.Status)
		if err != nil {
			return err
		}
	}
	return nil
}
