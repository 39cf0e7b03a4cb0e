package models

import (
	"time"
)

// Оценки качества услуг (как их отдаёт бэкенд)
const (
	QualityExcellent = "Отлично"
	QualityGood      = "Хорошо"
	QualityNormal    = "Нормально"
	QualityBad       = "Плохо"
	QualityTerrible  = "Ужасно"
)

// Review представляет собой структуру отзыва. Отзыв неизменяем после
// создания, администратор может только удалить его.
type Review struct {
	ID             int       `json:"id"`
	Body           string    `json:"body"`
	ProjectLink    string    `json:"projectLink,omitempty"`
	Rating         int       `json:"rating"` // 1..5
	ServiceQuality string    `json:"serviceQuality"`
	User           *User     `json:"user,omitempty"`
	Username       string    `json:"username,omitempty"` // добавляется бэкендом
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateReviewRequest — новый отзыв
type CreateReviewRequest struct {
	Body           string `json:"body"`
	ProjectLink    string `json:"projectLink,omitempty"`
	Rating         int    `json:"rating"`
	ServiceQuality string `json:"serviceQuality"`
}
