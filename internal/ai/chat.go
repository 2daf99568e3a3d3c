package ai

import (
	"context"
	"fmt"
)

// ChatTurn одна реплика разговорной истории с фронтенда.
// Роли приходят в терминах UI ("user"/"model") и сужаются
// до ролей chat API на этой границе.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatClient разговорный вариант генератора: держит контекст диалога
type ChatClient struct {
	baseClient *Client
}

// NewChatClient создает новый chat client
func NewChatClient(baseClient *Client) *ChatClient {
	return &ChatClient{baseClient: baseClient}
}

// Chat отправляет сообщение вместе с валидированной историей
func (cc *ChatClient) Chat(ctx context.Context, history []ChatTurn, userMessage string) (string, error) {
	messages, err := NarrowHistory(history)
	if err != nil {
		return "", err
	}

	full := make([]Message, 0, len(messages)+2)
	full = append(full, Message{Role: "system", Content: GetChatSystemPrompt()})
	full = append(full, messages...)
	full = append(full, Message{Role: "user", Content: userMessage})

	return cc.baseClient.Chat(ctx, full)
}

// NarrowHistory валидирует слабо типизированную историю диалога
// и переводит ее в сообщения chat API. Незнакомая роль — ошибка,
// а не молчаливый пропуск.
func NarrowHistory(history []ChatTurn) ([]Message, error) {
	messages := make([]Message, 0, len(history))
	for i, turn := range history {
		if turn.Content == "" {
			return nil, fmt.Errorf("history turn %d: empty content", i)
		}
		switch turn.Role {
		case RoleUser:
			messages = append(messages, Message{Role: "user", Content: turn.Content})
		case RoleModel:
			messages = append(messages, Message{Role: "assistant", Content: turn.Content})
		default:
			return nil, fmt.Errorf("history turn %d: unknown role %q", i, turn.Role)
		}
	}
	return messages, nil
}
