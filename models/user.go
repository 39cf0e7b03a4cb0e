package models

import (
	"time"
)

// Роли пользователей
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// User представляет собой структуру пользователя
type User struct {
	ID        int        `json:"id"`
	Email     string     `json:"email,omitempty"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Telegram  string     `json:"telegram,omitempty"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Role      string     `json:"role"` // "admin", "moderator" или "user"
	Name      string     `json:"name,omitempty"` // вычисляемое поле с бэкенда
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Credentials — данные для входа
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData — данные для регистрации
type RegisterData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
}

// ProfileUpdate — изменяемые поля профиля
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Telegram  string `json:"telegram"`
}

// AuthResponse — ответ бэкенда на login/register/profile
type AuthResponse struct {
	User        *User    `json:"user"`
	Permissions []string `json:"permissions"`
	Token       string   `json:"token,omitempty"`
}
