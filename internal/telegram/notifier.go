package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LifeLane/Shadow-Console-sub000/pkg/utils"
)

// Notifier шлет операторские уведомления консоли в Telegram:
// итоги сигналов, сбои генерации и персистентности. Без токена
// работает как no-op, чтобы не ветвить вызывающий код.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *utils.Logger
}

// NewNotifier создает notifier; пустой token дает выключенный notifier
func NewNotifier(token string, chatID int64, logger *utils.Logger) (*Notifier, error) {
	if token == "" {
		logger.Info("telegram notifications disabled (no token)")
		return &Notifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram notifier authorized as @%s", bot.Self.UserName)
	return &Notifier{api: bot, chatID: chatID, logger: logger}, nil
}

// Notify отправляет одно сообщение; ошибки доставки только логируются
func (n *Notifier) Notify(text string) {
	if n.api == nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("failed to send telegram notification: %v", err)
	}
}
