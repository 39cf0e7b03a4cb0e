package models

import (
	"time"
)

// Notification представляет собой уведомление пользователя
type Notification struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminStats — сводка для панели администратора. Значения всегда
// пересчитываются по коллекциям, бэкенд их отдельно не хранит.
type AdminStats struct {
	TotalUsers         int `json:"totalUsers"`
	TotalProjects      int `json:"totalProjects"`
	TotalReviews       int `json:"totalReviews"`
	PendingProjects    int `json:"pendingProjects"`
	InProgressProjects int `json:"inProgressProjects"`
	CompletedProjects  int `json:"completedProjects"`
}
