package models

import (
	"time"
)

// Статусы проекта
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Типы проектов
const (
	TypeLanding   = "landing"
	TypeEcommerce = "ecommerce"
	TypeWebapp    = "webapp"
	TypeBot       = "bot"
	TypeOther     = "other"
)

// Project представляет собой структуру проекта
type Project struct {
	ID             int              `json:"id"`
	Title          string           `json:"title,omitempty"`
	ClientName     string           `json:"clientName"`
	Telegram       string           `json:"telegram"`
	Type           string           `json:"type"`   // "landing", "ecommerce", "webapp", "bot", "other"
	Description    string           `json:"description"`
	Status         string           `json:"status"` // "pending", "in_progress", "completed", "cancelled"
	GithubRepoLink string           `json:"githubRepoLink,omitempty"`
	SpecLink       string           `json:"specLink,omitempty"`
	User           *User            `json:"user,omitempty"`
	History        []ProjectHistory `json:"history,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      *time.Time       `json:"updatedAt,omitempty"`
}

// ProjectHistory — одна запись в истории проекта. Записи только
// добавляются; часть из них кодирует коммит в виде "текст (abc1234)".
type ProjectHistory struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateProjectRequest — заявка на новый проект
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Telegram    string `json:"telegram"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// ProjectLinks — ссылки проекта, редактируемые администратором
type ProjectLinks struct {
	GithubRepoLink string `json:"githubRepoLink,omitempty"`
	SpecLink       string `json:"specLink,omitempty"`
}
