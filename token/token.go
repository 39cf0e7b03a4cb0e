// Чтение клиентской стороной клеймов bearer-токена. Подпись не
// проверяется — ключ знает только сервер; нам нужен лишь срок жизни,
// чтобы не ходить за профилем с заведомо мёртвым токеном.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims — данные токена, которые выдаёт бэкенд портфолио.
type Claims struct {
	UserID int    `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Parse разбирает токен без проверки подписи.
func Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired сообщает, истёк ли токен. Нечитаемый токен считается
// истёкшим; токен без exp — живым (решает сервер).
func Expired(raw string) bool {
	claims, err := Parse(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
