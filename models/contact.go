package models

import (
	"time"
)

// Статусы заявки на связь
const (
	ContactPending   = "pending"
	ContactContacted = "contacted"
	ContactClosed    = "closed"
)

// ContactRequest представляет собой заявку из формы «связаться со мной»
type ContactRequest struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Telegram   string    `json:"telegram"`
	Message    string    `json:"message"`
	Status     string    `json:"status"` // "pending", "contacted", "closed"
	User       *User     `json:"user,omitempty"`
	HandledBy  *User     `json:"handledBy,omitempty"`
	AdminNotes string    `json:"adminNotes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ContactForm — данные публичной формы обратной связи
type ContactForm struct {
	Name     string `json:"name"`
	Telegram string `json:"telegram"`
	Message  string `json:"message"`
}

// ContactStats — сводка по заявкам, отдаётся бэкендом
type ContactStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Contacted int `json:"contacted"`
	Closed    int `json:"closed"`
}
