package stores

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// MessagesStore — список переписок пользователя и буфер открытой
// переписки. Список админов хранится отдельно и с переписками не
// объединяется: объединение (админы без переписки, без дублей, без
// самого себя) считает читающая сторона.
type MessagesStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	conversations   []models.Conversation
	currentMessages []models.ChatMessage
	currentChatUser *models.User
	admins          []models.User
	needsRefresh    bool
	isLoading       bool
	err             string
}

func NewMessagesStore(client *api.Client) *MessagesStore {
	return &MessagesStore{api: client}
}

// ─────────────────────────── чтение состояния

func (s *MessagesStore) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Conversation(nil), s.conversations...)
}

func (s *MessagesStore) CurrentMessages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.currentMessages...)
}

func (s *MessagesStore) CurrentChatUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentChatUser == nil {
		return nil
	}
	u := *s.currentChatUser
	return &u
}

func (s *MessagesStore) Admins() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.admins...)
}

// UnreadTotal — сумма непрочитанного по всем перепискам (бейдж
// в навигации), пересчитывается при каждом чтении.
func (s *MessagesStore) UnreadTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, c := range s.conversations {
		total += c.UnreadCount
	}
	return total
}

// NeedsRefresh сигнализирует, что пришло сообщение от неизвестного
// собеседника и список переписок пора перечитать.
func (s *MessagesStore) NeedsRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsRefresh
}

func (s *MessagesStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *MessagesStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *MessagesStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── загрузка

// LoadAdmins загружает список админов для начала новой переписки.
// Сбой не считается ошибкой стора — список просто останется пустым.
func (s *MessagesStore) LoadAdmins(ctx context.Context) {
	var admins []models.User
	if err := s.api.Get(ctx, "/messages/admins", &admins); err != nil {
		log.Printf("[messages] не удалось загрузить админов: %v", err)
		return
	}

	s.mu.Lock()
	s.admins = admins
	s.mu.Unlock()
	s.notify()
}

func (s *MessagesStore) LoadConversations(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var conversations []models.Conversation
	err := s.api.Get(ctx, "/messages/conversations", &conversations)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить сообщения"
	} else {
		s.conversations = conversations
		s.needsRefresh = false
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// OpenConversation выбирает собеседника. Непустой собеседник влечёт
// загрузку истории; nil очищает буфер без похода в сеть.
func (s *MessagesStore) OpenConversation(ctx context.Context, user *models.User) {
	s.mu.Lock()
	s.currentChatUser = user
	if user == nil {
		s.currentMessages = nil
		s.mu.Unlock()
		s.notify()
		return
	}
	userID := user.ID
	s.mu.Unlock()
	s.notify()

	s.LoadMessages(ctx, userID)
}

// LoadMessages загружает историю переписки с собеседником и оптимистично
// обнуляет её счётчик непрочитанного. Серверного вызова «отметить
// прочитанным» не существует: другой вкладке или устройству обнуление
// не видно, счётчик там сойдётся при следующей загрузке переписок.
func (s *MessagesStore) LoadMessages(ctx context.Context, userID int) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var messages []models.ChatMessage
	err := s.api.Get(ctx, fmt.Sprintf("/messages/%d", userID), &messages)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить сообщения"
	} else {
		s.currentMessages = messages
		for i := range s.conversations {
			if s.conversations[i].User.ID == userID {
				s.conversations[i].UnreadCount = 0
			}
		}
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── отправка и приём

// Send отправляет сообщение. Ответ сервера дописывается в буфер
// открытой переписки и становится lastMessage соответствующей
// переписки; если переписки ещё нет (первое сообщение собеседнику),
// список перечитывается целиком — конструировать переписку на клиенте
// не пытаемся, путь слишком редкий.
func (s *MessagesStore) Send(ctx context.Context, receiverID int, content string) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var sent models.ChatMessage
	req := models.SendMessageRequest{ReceiverID: receiverID, Content: content}
	if err := s.api.Post(ctx, "/messages", req, &sent); err != nil {
		s.mu.Lock()
		s.err = "Не удалось отправить сообщение"
		s.mu.Unlock()
		s.notify()
		return false
	}

	s.mu.Lock()
	s.currentMessages = append(s.currentMessages, sent)
	found := false
	for i := range s.conversations {
		if s.conversations[i].User.ID == receiverID {
			msg := sent
			s.conversations[i].LastMessage = &msg
			found = true
		}
	}
	s.mu.Unlock()
	s.notify()

	if !found {
		s.LoadConversations(ctx)
	}
	return true
}

// ApplyIncoming применяет сообщение, пришедшее по живому каналу.
// Сообщение от открытого собеседника дописывается в буфер и сразу
// считается прочитанным; от известного — увеличивает его счётчик;
// от неизвестного — взводит needsRefresh.
func (s *MessagesStore) ApplyIncoming(msg models.ChatMessage) {
	s.mu.Lock()

	if s.currentChatUser != nil && s.currentChatUser.ID == msg.SenderID {
		msg.IsRead = true
		s.currentMessages = append(s.currentMessages, msg)
		for i := range s.conversations {
			if s.conversations[i].User.ID == msg.SenderID {
				last := msg
				s.conversations[i].LastMessage = &last
				s.conversations[i].UnreadCount = 0
			}
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	known := false
	for i := range s.conversations {
		if s.conversations[i].User.ID == msg.SenderID {
			last := msg
			s.conversations[i].LastMessage = &last
			s.conversations[i].UnreadCount++
			known = true
		}
	}
	if !known {
		s.needsRefresh = true
	}
	s.mu.Unlock()
	s.notify()
}

func (s *MessagesStore) Reset() {
	s.mu.Lock()
	s.conversations = nil
	s.currentMessages = nil
	s.currentChatUser = nil
	s.admins = nil
	s.needsRefresh = false
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
