// Пакет api — шлюз к REST-бэкенду портфолио: подставляет bearer-токен,
// нормализует ошибки и дергает хук при 401. Состояния у клиента нет,
// кроме чтения токена из хранилища.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/egor/portfolioclient/storage"
)

// Error — нормализованная ошибка API: человекочитаемое сообщение и
// HTTP-статус. Для сетевых сбоев StatusCode равен нулю.
type Error struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// Client выполняет запросы к REST API портфолио.
type Client struct {
	baseURL string
	client  *http.Client
	keeper  storage.TokenKeeper

	// onUnauthorized вызывается при ответе 401 (инвалидация сессии).
	// Редиректы и прочие реакции — забота вызывающего слоя.
	onUnauthorized func()
}

// NewClient создаёт клиента API. baseURL — без завершающего слэша,
// например "http://localhost:8080/api".
func NewClient(baseURL string, timeout time.Duration, keeper storage.TokenKeeper) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		keeper:  keeper,
	}
}

// OnUnauthorized регистрирует хук, вызываемый на каждый ответ 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL возвращает базовый URL клиента.
func (c *Client) BaseURL() string { return c.baseURL }

// Do выполняет запрос и декодирует JSON-ответ в out (если out != nil).
// body сериализуется в JSON (если body != nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("сериализация запроса: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: fmt.Sprintf("создание запроса: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// Get / Post / Put / Patch / Delete — сокращения над Do.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// PostMultipart загружает файл полем field (например аватар профиля).
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return &Error{Message: fmt.Sprintf("формирование multipart: %v", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &Error{Message: fmt.Sprintf("чтение файла: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return &Error{Message: fmt.Sprintf("формирование multipart: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &Error{Message: fmt.Sprintf("создание запроса: %v", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, out)
}

// send подставляет заголовки, выполняет запрос и нормализует ответ.
func (c *Client) send(req *http.Request, out interface{}) error {
	if tok := c.keeper.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Message: "сервер недоступен, попробуйте позже"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Message:    errorMessage(resp.Body, resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil {
		// тело неинтересно, но дочитываем для переиспользования соединения
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("разбор ответа: %v", err), StatusCode: resp.StatusCode}
	}
	return nil
}

// errorMessage достаёт сообщение из тела ошибки бэкенда
// ({"error": ...} либо {"message": ...}).
func errorMessage(body io.Reader, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("[api] нечитаемое тело ошибки (статус %d): %.200s", status, data)
		}
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return http.StatusText(status)
	}
}
