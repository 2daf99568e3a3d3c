package domain

import "time"

// User представляет агрегированную запись игрока
type User struct {
	ID                string    `json:"id"`
	XP                int64     `json:"xp"`
	SignalsGenerated  int64     `json:"signalsGenerated"`
	SignalsWon        int64     `json:"signalsWon"`
	BsaiEarned        float64   `json:"bsaiEarned"`
	ShadowBalance     float64   `json:"shadowBalance"`
	StakedAmount      float64   `json:"stakedAmount"`
	WalletAddress     string    `json:"walletAddress,omitempty"`
	WalletChain       string    `json:"walletChain,omitempty"`
	CompletedMissions []string  `json:"completedMissions"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasCompletedMission проверяет, выполнена ли миссия
func (u *User) HasCompletedMission(missionID string) bool {
	for _, id := range u.CompletedMissions {
		if id == missionID {
			return true
		}
	}
	return false
}

// Signal представляет неизменяемую запись одной попытки сделки.
// После записи в коллекцию никогда не мутируется (append-only).
type Signal struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Asset       string    `json:"asset"`
	Prediction  string    `json:"prediction"` // "BUY", "SELL", "HOLD"
	TradeMode   string    `json:"tradeMode"`
	Outcome     string    `json:"outcome"` // "TP_HIT", "SL_HIT", "PENDING"
	RewardBsai  float64   `json:"rewardBsai"`
	RewardXP    int64     `json:"rewardXp"`
	GasPaid     float64   `json:"gasPaid"`
	EntryRange  string    `json:"entryRange"`
	StopLoss    string    `json:"stopLoss"`
	TakeProfit  string    `json:"takeProfit"`
	Confidence  int       `json:"confidence"`
	ShadowScore int       `json:"shadowScore"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Insight представляет структурированный прогноз от AI для одной заявки.
// Не персистится отдельно: живет в контроллере, пока не свернется в Signal.
// Строки entryRange/stopLoss/takeProfit сохраняются дословно — фаза
// трекинга парсит их заново при каждой проверке порогов.
type Insight struct {
	Prediction  string `json:"prediction"`
	Confidence  int    `json:"confidence"`  // 0-100
	EntryRange  string `json:"entryRange"`  // например "$25,200 - $25,500"
	StopLoss    string `json:"stopLoss"`    // например "$24,800"
	TakeProfit  string `json:"takeProfit"`  // например "$26,200"
	ShadowScore int    `json:"shadowScore"` // 0-100
	Thought     string `json:"thought"`
}

// Mission представляет запись каталога миссий
type Mission struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RewardXP    int64   `json:"rewardXp"`
	RewardBsai  float64 `json:"rewardBsai"`
	Enabled     bool    `json:"enabled"`
}

// Agent представляет AI-агента из каталога консоли
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"` // "ACTIVE", "IDLE", "OFFLINE"
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reward результат расчета вознаграждения за исход сигнала
type Reward struct {
	Bsai float64
	XP   int64
	Gas  float64
}

// SignalDraft входные данные операции save-signal.
// ID и CreatedAt назначает репозиторий в момент сохранения.
type SignalDraft struct {
	UserID      string
	Asset       string
	Prediction  string
	TradeMode   string
	Outcome     string
	RewardBsai  float64
	RewardXP    int64
	GasPaid     float64
	EntryRange  string
	StopLoss    string
	TakeProfit  string
	Confidence  int
	ShadowScore int
}
