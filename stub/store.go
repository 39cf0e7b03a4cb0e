package stub

import (
	"sort"
	"sync"
	"time"

	"github.com/egor/portfolioclient/models"
)

// account — пользователь вместе с хешем пароля (наружу не отдаётся).
type account struct {
	models.User
	PasswordHash string
}

// memory — всё состояние стаба. Нарочно в памяти: тесты клиента должны
// быть герметичными, а локальному фронтенду персистентность не нужна.
type memory struct {
	mu sync.Mutex

	accounts      []account
	projects      []models.Project
	reviews       []models.Review
	requests      []models.ContactRequest
	notifications map[int][]models.Notification // по ID пользователя
	messages      []models.ChatMessage

	nextID map[string]int
}

func newMemory() *memory {
	return &memory{
		notifications: make(map[int][]models.Notification),
		nextID:        make(map[string]int),
	}
}

// id выдаёт следующий идентификатор в коллекции. Вызывать под m.mu.
func (m *memory) id(collection string) int {
	m.nextID[collection]++
	return m.nextID[collection]
}

func (m *memory) accountByEmail(email string) *account {
	for i := range m.accounts {
		if m.accounts[i].Email == email {
			return &m.accounts[i]
		}
	}
	return nil
}

func (m *memory) accountByID(id int) *account {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			return &m.accounts[i]
		}
	}
	return nil
}

func (m *memory) projectByID(id int) *models.Project {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i]
		}
	}
	return nil
}

func (m *memory) requestByID(id int) *models.ContactRequest {
	for i := range m.requests {
		if m.requests[i].ID == id {
			return &m.requests[i]
		}
	}
	return nil
}

// conversationsFor собирает переписки пользователя из плоского журнала
// сообщений: по собеседнику — последнее сообщение и счётчик
// непрочитанного. Вызывать под m.mu.
func (m *memory) conversationsFor(viewerID int) []models.Conversation {
	type slot struct {
		last   models.ChatMessage
		unread int
	}
	peers := make(map[int]*slot)

	for _, msg := range m.messages {
		var peerID int
		switch {
		case msg.SenderID == viewerID:
			peerID = msg.ReceiverID
		case msg.ReceiverID == viewerID:
			peerID = msg.SenderID
		default:
			continue
		}

		sl, ok := peers[peerID]
		if !ok {
			sl = &slot{last: msg}
			peers[peerID] = sl
		} else if msg.ID > sl.last.ID {
			sl.last = msg
		}
		if msg.SenderID == peerID && !msg.IsRead {
			sl.unread++
		}
	}

	out := make([]models.Conversation, 0, len(peers))
	for peerID, sl := range peers {
		acc := m.accountByID(peerID)
		if acc == nil {
			continue
		}
		last := sl.last
		out = append(out, models.Conversation{
			User:        publicUser(acc),
			LastMessage: &last,
			UnreadCount: sl.unread,
		})
	}

	// свежие переписки первыми
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.ID > out[j].LastMessage.ID
	})
	return out
}

// historyBetween — история пары (порядок по возрастанию ID). Попутно
// помечает прочитанными сообщения собеседника: именно так «открытие
// переписки» выглядит для реального бэкенда. Вызывать под m.mu.
func (m *memory) historyBetween(viewerID, peerID int) []models.ChatMessage {
	var out []models.ChatMessage
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.SenderID == peerID && msg.ReceiverID == viewerID {
			msg.IsRead = true
		}
		if (msg.SenderID == viewerID && msg.ReceiverID == peerID) ||
			(msg.SenderID == peerID && msg.ReceiverID == viewerID) {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// notify добавляет пользователю уведомление. Вызывать под m.mu.
func (m *memory) notify(userID int, text string) {
	m.notifications[userID] = append(m.notifications[userID], models.Notification{
		ID:        m.id("notifications"),
		Message:   text,
		CreatedAt: time.Now(),
	})
}

// publicUser возвращает пользователя без серверных полей.
func publicUser(acc *account) models.User {
	u := acc.User
	u.Name = displayName(&u)
	return u
}

func displayName(u *models.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
