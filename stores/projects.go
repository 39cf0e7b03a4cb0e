package stores

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
)

// ProjectsStore — проекты текущего пользователя плюс открытый проект.
type ProjectsStore struct {
	signal
	mu sync.Mutex

	api *api.Client

	projects  []models.Project
	current   *models.Project
	isLoading bool
	err       string
}

func NewProjectsStore(client *api.Client) *ProjectsStore {
	return &ProjectsStore{api: client}
}

// ─────────────────────────── чтение состояния

func (s *ProjectsStore) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

func (s *ProjectsStore) Current() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	p := *s.current
	return &p
}

func (s *ProjectsStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *ProjectsStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ProjectsStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

func (s *ProjectsStore) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── операции

func (s *ProjectsStore) begin() {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// LoadMyProjects целиком заменяет локальный список ответом сервера.
func (s *ProjectsStore) LoadMyProjects(ctx context.Context) {
	s.begin()

	var projects []models.Project
	err := s.api.Get(ctx, "/projects", &projects)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить проекты"
	} else {
		s.projects = projects
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// LoadProject загружает один проект в current.
func (s *ProjectsStore) LoadProject(ctx context.Context, id int) {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.current = nil
	s.mu.Unlock()
	s.notify()

	var project models.Project
	err := s.api.Get(ctx, fmt.Sprintf("/projects/%d", id), &project)

	s.mu.Lock()
	if err != nil {
		s.err = "Не удалось загрузить проект"
	} else {
		s.current = &project
	}
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// CreateProject добавляет созданный проект в конец локального списка
// без перезагрузки: порядок до следующего LoadMyProjects может
// отличаться от серверной сортировки.
func (s *ProjectsStore) CreateProject(ctx context.Context, req models.CreateProjectRequest) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var created models.Project
	if err := s.api.Post(ctx, "/projects", req, &created); err != nil {
		s.fail("Не удалось создать проект")
		return false
	}

	s.mu.Lock()
	s.projects = append(s.projects, created)
	s.mu.Unlock()
	s.notify()
	return true
}

// UpdateStatus заменяет проект ответом сервера; открытый проект
// обновляется той же мутацией.
func (s *ProjectsStore) UpdateStatus(ctx context.Context, id int, status string) bool {
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
	if s.current != nil && s.current.ID == id {
		s.current = &updated
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// AddHistory дописывает запись в историю проекта и перечитывает проект,
// чтобы локальная история осталась канонической.
func (s *ProjectsStore) AddHistory(ctx context.Context, id int, description string) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	body := map[string]string{"description": description}
	if err := s.api.Post(ctx, fmt.Sprintf("/projects/%d/history", id), body, nil); err != nil {
		s.fail("Не удалось добавить запись в историю")
		return false
	}

	var project models.Project
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &project); err != nil {
		// запись принята сервером, локальную копию обновит следующий Load
		return true
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = project
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current = &project
	}
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *ProjectsStore) fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	s.notify()
}

// Reset очищает стор (выход из аккаунта, изоляция тестов).
func (s *ProjectsStore) Reset() {
	s.mu.Lock()
	s.projects = nil
	s.current = nil
	s.isLoading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}
