package stub

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// jwtKey — ключ подписи токенов стаба
var jwtKey []byte

func init() {
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		// стаб предназначен для локальной разработки и тестов
		log.Println("[stub] JWT_SECRET_KEY не установлен, используется ключ для разработки")
		jwtSecret = "ключ_стаба_только_для_разработки"
	}
	jwtKey = []byte(jwtSecret)
}

// claims — данные токена стаба; форма совпадает с боевым бэкендом.
type claims struct {
	UserID int    `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken выписывает токен на 24 часа.
func issueToken(userID int, role string) (string, error) {
	now := time.Now()
	c := &claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "portfolio-stub",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(jwtKey)
}

func validateToken(tokenString string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("недействительный токен")
	}
	c, ok := token.Claims.(*claims)
	if !ok {
		return nil, errors.New("неверный формат токена")
	}
	return c, nil
}

// authRequired проверяет bearer-токен и кладёт userID и role в контекст.
func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			c.Abort()
			return
		}

		cl, err := validateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный или устаревший токен"})
			c.Abort()
			return
		}

		c.Set("userID", cl.UserID)
		c.Set("role", cl.Role)
		c.Next()
	}
}

// roleRequired пускает только перечисленные роли (после authRequired).
func roleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
		c.Abort()
	}
}

// bearerToken достаёт токен из заголовка или query-параметра
// (WebSocket-клиенты не всегда умеют заголовки).
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.Replace(h, "Bearer ", "", 1)
	}
	return c.Query("token")
}
