package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// ContactStore — публичная форма обратной связи плюс админская часть:
// список заявок и их статусы.
type ContactStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	requests     []models.ContactRequest
	stats        *models.ContactStats
	isSubmitting bool
	isSuccess    bool
	isLoading    bool
	err          string
}

func NewContactStore(client *api.Client) *ContactStore {
	return &ContactStore{api: client}
}

// ─────────────────────────── чтение состояния

func (s *ContactStore) Requests() []models.ContactRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ContactRequest(nil), s.requests...)
}

func (s *ContactStore) Stats() *models.ContactStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	st := *s.stats
	return &st
}

func (s *ContactStore) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSubmitting
}

func (s *ContactStore) IsSuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSuccess
}

func (s *ContactStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *ContactStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ContactStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── публичная форма

// Send отправляет заявку с публичной страницы контактов.
func (s *ContactStore) Send(ctx context.Context, form models.ContactForm) bool {
	s.mu.Lock()
	s.isSubmitting = true
	s.isSuccess = false
	s.err = ""
	s.mu.Unlock()
	s.notify()

	err := s.api.Post(ctx, "/contact", form, nil)

	s.mu.Lock()
	if err != nil {
		s.err = backendMessage(err, "Ошибка отправки")
	} else {
		s.isSuccess = true
	}
	s.isSubmitting = false
	s.mu.Unlock()
	s.notify()
	return err == nil
}

// ─────────────────────────── админская часть

func (s *ContactStore) LoadRequests(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var requests []models.ContactRequest
	err := s.api.Get(ctx, "/contact/requests", &requests)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить заявки"
	} else {
		s.requests = requests
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

func (s *ContactStore) LoadStats(ctx context.Context) {
	var stats models.ContactStats
	if err := s.api.Get(ctx, "/contact/requests/stats", &stats); err != nil {
		s.mu.Lock()
		s.err = "Не удалось загрузить сводку заявок"
		s.mu.Unlock()
		s.notify()
		return
	}

	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	s.notify()
}

// UpdateRequestStatus меняет статус заявки; заметки администратора
// передаются тем же запросом, если заданы. Локальная сводка после
// успеха пересчитывается свёрткой по списку.
func (s *ContactStore) UpdateRequestStatus(ctx context.Context, id int, status, adminNotes string) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	body := map[string]string{"status": status}
	if adminNotes != "" {
		body["adminNotes"] = adminNotes
	}

	var updated models.ContactRequest
	if err := s.api.Patch(ctx, fmt.Sprintf("/contact/requests/%d/status", id), body, &updated); err != nil {
		s.mu.Lock()
		s.err = "Не удалось обновить заявку"
		s.mu.Unlock()
		s.notify()
		return false
	}

	s.mu.Lock()
	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i] = updated
		}
	}
	s.recountStats()
	s.mu.Unlock()
	s.notify()
	return true
}

// recountStats пересчитывает сводку по локальному списку. Вызывать
// под s.mu; пока список не загружался, сводку не трогаем.
func (s *ContactStore) recountStats() {
	if s.requests == nil {
		return
	}
	st := models.ContactStats{Total: len(s.requests)}
	for _, r := range s.requests {
		switch r.Status {
		case models.ContactPending:
			st.Pending++
		case models.ContactContacted:
			st.Contacted++
		case models.ContactClosed:
			st.Closed++
		}
	}
	s.stats = &st
}

func (s *ContactStore) Reset() {
	s.mu.Lock()
	s.requests = nil
	s.stats = nil
	s.isSubmitting = false
	s.isSuccess = false
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
