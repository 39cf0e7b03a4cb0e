// Пакет live — живой канал сообщений: WebSocket-подписка, питающая
// MessagesStore входящими сообщениями. Переподключение — забота
// вызывающего кода.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/egor/portfolioclient/models"
	"github.com/egor/portfolioclient/storage"
	"github.com/egor/portfolioclient/stores"
)

const (
	writeWait      = 10 * time.Second    // время на запись одного сообщения
	pongWait       = 60 * time.Second    // максимальное время ожидания PONG
	pingPeriod     = (pongWait * 9) / 10 // как часто слать PING
	maxMessageSize = 64 << 10            // максимальный размер входящего сообщения
)

// Envelope — конверт сообщения живого канала.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Listen подключается к <wsURL>/ws и применяет входящие события к стору
// сообщений до отмены контекста или обрыва соединения.
func Listen(ctx context.Context, wsURL string, keeper storage.TokenKeeper, store *stores.MessagesStore) error {
	header := http.Header{}
	if tok := keeper.Token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"/ws", header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("подключение к живому каналу: статус %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("подключение к живому каналу: %w", err)
	}
	defer conn.Close()

	// закрываем соединение при отмене контекста, чтобы разбудить чтение
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		case <-done:
		}
	}()

	// держим соединение живым ping/pong'ом
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("живой канал оборван: %w", err)
			}
			return nil
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[live] нечитаемый конверт: %.200s", raw)
			continue
		}

		switch env.Type {
		case "new_message":
			var msg models.ChatMessage
			if err := json.Unmarshal(env.Payload, &msg); err != nil {
				log.Printf("[live] нечитаемое сообщение: %v", err)
				continue
			}
			store.ApplyIncoming(msg)
		case "error":
			log.Printf("[live] ошибка от сервера: %s", env.Payload)
		default:
			// незнакомые события игнорируем: канал версионируется сервером
		}
	}
}
