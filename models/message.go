package models

import (
	"time"
)

// ChatMessage представляет собой одно сообщение переписки
type ChatMessage struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	SenderID   int       `json:"senderId"`
	ReceiverID int       `json:"receiverId"`
	Sender     *User     `json:"sender,omitempty"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation — переписка с одним собеседником: кто он, последнее
// сообщение и сколько его сообщений ещё не прочитано.
type Conversation struct {
	User        User         `json:"user"`
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
}

// SendMessageRequest — исходящее сообщение
type SendMessageRequest struct {
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
}
