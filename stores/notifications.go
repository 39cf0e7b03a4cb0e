package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// NotificationsStore — личные уведомления пользователя.
type NotificationsStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	notifications []models.Notification
	isLoading     bool
	err           string
}

func NewNotificationsStore(client *api.Client) *NotificationsStore {
	return &NotificationsStore{api: client}
}

func (s *NotificationsStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// UnreadCount — свёртка по списку, при каждом чтении заново.
func (s *NotificationsStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (s *NotificationsStore) Unread() []models.Notification {
	return s.filter(false)
}

func (s *NotificationsStore) Read() []models.Notification {
	return s.filter(true)
}

func (s *NotificationsStore) filter(read bool) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.IsRead == read {
			out = append(out, n)
		}
	}
	return out
}

func (s *NotificationsStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *NotificationsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *NotificationsStore) Load(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var notifications []models.Notification
	err := s.api.Get(ctx, "/notifications", &notifications)

	s.mu.Lock()
	if err != nil {
		s.err = backendMessage(err, "Ошибка загрузки уведомлений")
	} else {
		s.notifications = notifications
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// MarkRead помечает уведомление прочитанным; локальный флаг меняется
// только после успеха запроса.
func (s *NotificationsStore) MarkRead(ctx context.Context, id int) bool {
	if err := s.api.Patch(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		s.mu.Lock()
		s.err = backendMessage(err, "Ошибка при отметке уведомления")
		s.mu.Unlock()
		s.notify()
		return false
	}

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
		}
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// MarkAllRead помечает прочитанными все непрочитанные уведомления —
// у бэкенда нет массовой операции, поэтому по запросу на каждое,
// параллельно. Флаги переворачиваются только если прошли все запросы.
func (s *NotificationsStore) MarkAllRead(ctx context.Context) bool {
	s.mu.Lock()
	var ids []int
	for _, n := range s.notifications {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return true
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			errs[i] = s.api.Patch(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.mu.Lock()
			s.err = backendMessage(err, "Ошибка при отметке уведомлений")
			s.mu.Unlock()
			s.notify()
			return false
		}
	}

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *NotificationsStore) Reset() {
	s.mu.Lock()
	s.notifications = nil
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
