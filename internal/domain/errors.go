package domain

import "errors"

var (
	// ErrNotFound возвращается когда запись не найдена
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input")

	// ErrSignalActive возвращается когда заявка уже в работе
	ErrSignalActive = errors.New("signal already in progress")

	// ErrNotResolved возвращается при попытке подтвердить незавершенный сигнал
	ErrNotResolved = errors.New("signal not resolved")

	// ErrInsufficientBalance возвращается при недостаточном балансе SHADOW
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOracleAPI возвращается при ошибке API источника цен
	ErrOracleAPI = errors.New("price oracle API error")

	// ErrInsightAPI возвращается при ошибке AI-генератора
	ErrInsightAPI = errors.New("insight generator error")

	// ErrStorage возвращается при ошибке document store
	ErrStorage = errors.New("storage error")
)
