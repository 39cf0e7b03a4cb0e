package stub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// стаб локальный, происхождение не проверяем
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub раздаёт события подключённым пользователям. У одного пользователя
// может быть несколько соединений (несколько вкладок).
type hub struct {
	mu    sync.Mutex
	conns map[int]map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{conns: make(map[int]map[*websocket.Conn]chan []byte)}
}

// Push отправляет пользователю конверт {"type","payload"}.
func (h *hub) Push(userID int, eventType string, payload interface{}) {
	raw, err := json.Marshal(struct {
		Type    string      `json:"type"`
		Payload interface{} `json:"payload"`
	}{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("[stub] сериализация события %s: %v", eventType, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, send := range h.conns[userID] {
		select {
		case send <- raw:
		default:
			// медленного потребителя не ждём
		}
	}
}

func (h *hub) register(userID int, conn *websocket.Conn) chan []byte {
	send := make(chan []byte, 64)
	h.mu.Lock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]chan []byte)
	}
	h.conns[userID][conn] = send
	h.mu.Unlock()
	return send
}

func (h *hub) unregister(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.conns[userID]; ok {
		if send, ok := set[conn]; ok {
			close(send)
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	h.mu.Unlock()
}

// serveWS поднимает WebSocket-соединение авторизованного пользователя.
func (s *Server) serveWS(c *gin.Context) {
	userID := c.GetInt("userID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[stub] upgrade не удался: %v", err)
		return
	}

	send := s.hub.register(userID, conn)

	// писатель
	go func() {
		for raw := range send {
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
		conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(wsWriteWait))
	}()

	// читатель: входящих данных не ждём, только ping/pong и закрытие
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(wsWriteWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}

	s.hub.unregister(userID, conn)
	conn.Close()
}
