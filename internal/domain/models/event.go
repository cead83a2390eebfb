package models

import "time"

// PlatformEvent is a new-message notification from the monitored surface.
type PlatformEvent struct {
	ChatID         int64     `json:"chat_id"`
	MessageID      int64     `json:"message_id"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	HasMedia       bool      `json:"has_media"`
}
