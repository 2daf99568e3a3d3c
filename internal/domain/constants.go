package domain

// Predictions
const (
	PredictionBuy  = "BUY"
	PredictionSell = "SELL"
	PredictionHold = "HOLD"
)

// Signal outcomes
const (
	OutcomeTPHit   = "TP_HIT"
	OutcomeSLHit   = "SL_HIT"
	OutcomePending = "PENDING"
)

// Lifecycle states
const (
	StateIdle       = "IDLE"
	StateSimulating = "SIMULATING"
	StateTracking   = "TRACKING"
	StateResolved   = "RESOLVED"
)

// Agent statuses
const (
	AgentActive  = "ACTIVE"
	AgentIdle    = "IDLE"
	AgentOffline = "OFFLINE"
)

// Trade modes
const (
	TradeModeScalp = "SCALP"
	TradeModeSwing = "SWING"
	TradeModeHold  = "HODL"
)

// Risk tiers
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Collection keys
const (
	CollectionUsers    = "users"
	CollectionAgents   = "agents"
	CollectionMissions = "missions"
	CollectionSignals  = "signals"
)

// Oracle providers
const (
	OracleBinance = "binance"
	OracleBybit   = "bybit"
)

// Storage drivers
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
)

// Bybit constants
const (
	BybitCategorySpot = "spot"
)
