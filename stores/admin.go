package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// AdminStore — данные панели администратора: пользователи, все проекты,
// отзывы и производная сводка. Сводка всегда пересчитывается полной
// свёрткой по коллекциям: инкрементальные поправки счётчиков в прошлом
// приводили к расхождениям.
type AdminStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	users     []models.User
	projects  []models.Project
	reviews   []models.Review
	stats     *models.AdminStats
	isLoading bool
	err       string
}

func NewAdminStore(client *api.Client) *AdminStore {
	return &AdminStore{api: client}
}

// ─────────────────────────── чтение состояния

func (s *AdminStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

func (s *AdminStore) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

func (s *AdminStore) Reviews() []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Review(nil), s.reviews...)
}

func (s *AdminStore) Stats() *models.AdminStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	st := *s.stats
	return &st
}

func (s *AdminStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *AdminStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *AdminStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// PendingProjects и родственные срезы вычисляются при каждом чтении.
func (s *AdminStore) PendingProjects() []models.Project {
	return s.byStatus(models.StatusPending)
}

func (s *AdminStore) InProgressProjects() []models.Project {
	return s.byStatus(models.StatusInProgress)
}

func (s *AdminStore) CompletedProjects() []models.Project {
	return s.byStatus(models.StatusCompleted)
}

func (s *AdminStore) byStatus(status string) []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// ─────────────────────────── загрузка

// LoadDashboard делает три параллельных запроса (пользователи, проекты,
// отзывы) и фиксирует результат только целиком: если хоть один запрос
// упал, локальное состояние не меняется.
func (s *AdminStore) LoadDashboard(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var (
		users    []models.User
		projects []models.Project
		reviews  []models.Review
	)
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = s.api.Get(ctx, "/admin/users", &users)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.api.Get(ctx, "/admin/projects", &projects)
	}()
	go func() {
		defer wg.Done()
		errs[2] = s.api.Get(ctx, "/reviews", &reviews)
	}()
	wg.Wait()

	s.mu.Lock()
	defer func() {
		s.isLoading = false
		s.mu.Unlock()
		s.notify()
	}()

	for _, err := range errs {
		if err != nil {
			s.err = "Не удалось загрузить данные"
			return
		}
	}

	s.users = users
	s.projects = projects
	s.reviews = reviews
	s.recountStats()
}

func (s *AdminStore) LoadUsers(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var users []models.User
	err := s.api.Get(ctx, "/admin/users", &users)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить пользователей"
	} else {
		s.users = users
		s.recountStats()
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

func (s *AdminStore) LoadProjects(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	var projects []models.Project
	err := s.api.Get(ctx, "/admin/projects", &projects)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить проекты"
	} else {
		s.projects = projects
		s.recountStats()
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── мутации

// UpdateProjectStatus меняет статус проекта; сводка пересчитывается
// в той же мутации.
func (s *AdminStore) UpdateProjectStatus(ctx context.Context, id int, status string) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var updated models.Project
	body := map[string]string{"status": status}
	if err := s.api.Patch(ctx, fmt.Sprintf("/projects/%d/status", id), body, &updated); err != nil {
		s.fail("Не удалось обновить статус")
		return false
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = updated
		}
	}
	s.recountStats()
	s.mu.Unlock()
	s.notify()
	return true
}

// UpdateProjectLinks обновляет ссылки проекта (репозиторий, ТЗ).
func (s *AdminStore) UpdateProjectLinks(ctx context.Context, id int, links models.ProjectLinks) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var updated models.Project
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/projects/%d/links", id), links, &updated); err != nil {
		s.fail("Не удалось обновить ссылки проекта")
		return false
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = updated
		}
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// UpdateUserRole меняет роль пользователя.
func (s *AdminStore) UpdateUserRole(ctx context.Context, id int, role string) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var updated models.User
	body := map[string]string{"role": role}
	if err := s.api.Patch(ctx, fmt.Sprintf("/admin/users/%d", id), body, &updated); err != nil {
		s.fail("Не удалось обновить пользователя")
		return false
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i] = updated
		}
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// DeleteReview удаляет отзыв и пересчитывает сводку.
func (s *AdminStore) DeleteReview(ctx context.Context, id int) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	if err := s.api.Delete(ctx, fmt.Sprintf("/reviews/%d", id), nil); err != nil {
		s.fail("Не удалось удалить отзыв")
		return false
	}

	s.mu.Lock()
	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
	s.recountStats()
	s.mu.Unlock()
	s.notify()
	return true
}

// recountStats — чистая свёртка по коллекциям. Вызывать под s.mu.
// Пока ни одной загрузки не было (stats == nil), сводка не появляется.
func (s *AdminStore) recountStats() {
	if s.stats == nil && s.users == nil && s.projects == nil && s.reviews == nil {
		return
	}
	st := models.AdminStats{
		TotalUsers:    len(s.users),
		TotalProjects: len(s.projects),
		TotalReviews:  len(s.reviews),
	}
	for _, p := range s.projects {
		switch p.Status {
		case models.StatusPending:
			st.PendingProjects++
		case models.StatusInProgress:
			st.InProgressProjects++
		case models.StatusCompleted:
			st.CompletedProjects++
		}
	}
	s.stats = &st
}

func (s *AdminStore) fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	s.notify()
}

func (s *AdminStore) Reset() {
	s.mu.Lock()
	s.users = nil
	s.projects = nil
	s.reviews = nil
	s.stats = nil
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
