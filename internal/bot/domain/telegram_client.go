package domain

import (
	"context"
	"time"
)

// TelegramClientAPI is the operator-facing bot transport.
type TelegramClientAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string) error

	// GetUpdates long-polls for updates with id >= offset.
	GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error)

	SetMyCommands(ctx context.Context, commands []BotCommand) error
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	From      User   `json:"from"`
	Edited    bool   `json:"-"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
