package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит параметры клиента портфолио-бэкенда.
type Config struct {
	APIBaseURL string        // базовый URL REST API (без завершающего /)
	WSBaseURL  string        // базовый URL WebSocket (ws:// или wss://)
	Timeout    time.Duration // таймаут одного HTTP-запроса
	TokenFile  string        // файл, в котором хранится bearer-токен
	StubAddr   string        // адрес локального стаба бэкенда
}

// Load читает .env (если есть) и собирает конфигурацию из переменных
// окружения с разумными значениями по умолчанию.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env не обязателен — работаем на чистых переменных окружения
		log.Println("[config] .env не найден, используем переменные окружения")
	}

	timeout := 15 * time.Second
	if t := os.Getenv("PORTFOLIO_API_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		} else {
			log.Printf("[config] некорректный PORTFOLIO_API_TIMEOUT %q: %v", t, err)
		}
	}

	return &Config{
		APIBaseURL: env("PORTFOLIO_API_URL", "http://localhost:8080/api"),
		WSBaseURL:  env("PORTFOLIO_WS_URL", "ws://localhost:8080"),
		Timeout:    timeout,
		TokenFile:  env("PORTFOLIO_TOKEN_FILE", defaultTokenFile()),
		StubAddr:   env("STUB_ADDR", ":8080"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// defaultTokenFile кладёт токен рядом с прочими пользовательскими данными,
// аналог localStorage-ключа "token" в веб-клиенте.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portfolio_token"
	}
	return dir + string(os.PathSeparator) + "portfolioclient" + string(os.PathSeparator) + "token"
}
