package stores

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
	"github.com/egor/portfolioclient/storage"
	"github.com/egor/portfolioclient/token"
)

// SessionStore владеет состоянием аутентификации и личностью текущего
// пользователя. Единственный источник истины для «вошёл ли посетитель».
// Инвариант: IsAuthenticated ⇔ user != nil.
type SessionStore struct {
	signal
	mu sync.Mutex

	api    *api.Client
	keeper storage.TokenKeeper

	// resetDomains сбрасывает доменные сторы при выходе (ставится реестром)
	resetDomains func()

	user        *models.User
	permissions []string
	isLoading   bool
	err         string
}

// NewSessionStore создаёт стор сессии. isLoading взводится сразу:
// до первого CheckAuth состояние сессии неизвестно.
func NewSessionStore(client *api.Client, keeper storage.TokenKeeper) *SessionStore {
	return &SessionStore{
		api:       client,
		keeper:    keeper,
		isLoading: true,
	}
}

// ─────────────────────────── чтение состояния

func (s *SessionStore) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionStore) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.permissions...)
}

func (s *SessionStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// IsAuthenticated, IsAdmin и IsModerator вычисляются при каждом чтении
// из роли пользователя и нигде не кэшируются.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *SessionStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Role == models.RoleAdmin
}

// IsModerator истинен и для администратора.
func (s *SessionStore) IsModerator() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && (s.user.Role == models.RoleModerator || s.user.Role == models.RoleAdmin)
}

func (s *SessionStore) HasPermission(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.permissions {
		if have == p {
			return true
		}
	}
	return false
}

func (s *SessionStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// ─────────────────────────── переходы сессии

// CheckAuth вызывается один раз на старте. Отсутствие сессии — не
// ошибка, а ожидаемое холодное состояние: любой сбой тихо приводит
// к анонимному состоянию. С заведомо истёкшим токеном на сервер
// не ходим.
func (s *SessionStore) CheckAuth(ctx context.Context) {
	tok := s.keeper.Token()
	if tok == "" || token.Expired(tok) {
		if tok != "" {
			log.Println("[session] сохранённый токен истёк")
		}
		s.settle(nil, nil)
		return
	}

	var resp models.AuthResponse
	if err := s.api.Get(ctx, "/auth/profile", &resp); err != nil {
		s.settle(nil, nil)
		return
	}
	s.settle(resp.User, resp.Permissions)
}

func (s *SessionStore) settle(user *models.User, permissions []string) {
	s.mu.Lock()
	s.user = user
	s.permissions = permissions
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

// Login выполняет вход. При неуспехе выставляет текст ошибки и
// возвращает false — наружу ошибка никогда не пробрасывается.
func (s *SessionStore) Login(ctx context.Context, cred models.Credentials) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", cred, &resp); err != nil {
		s.fail("Ошибка входа. Проверьте данные.")
		return false
	}
	s.adopt(resp)
	return true
}

// Register — тот же контракт, что и Login; конфликт email сервер
// возвращает без структурированного кода, поэтому сообщение общее.
func (s *SessionStore) Register(ctx context.Context, data models.RegisterData) bool {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", data, &resp); err != nil {
		s.fail("Ошибка регистрации. Возможно email уже занят.")
		return false
	}
	s.adopt(resp)
	return true
}

func (s *SessionStore) adopt(resp models.AuthResponse) {
	if resp.Token != "" {
		if err := s.keeper.SetToken(resp.Token); err != nil {
			log.Printf("[session] не удалось сохранить токен: %v", err)
		}
	}
	s.settle(resp.User, resp.Permissions)
}

func (s *SessionStore) fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	s.notify()
}

// Logout оптимистичен: локальное состояние очищается независимо от
// того, дошёл ли серверный logout. Токен удаляется всегда.
func (s *SessionStore) Logout(ctx context.Context) {
	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		log.Printf("[session] серверный logout не удался: %v", err)
	}
	if err := s.keeper.Clear(); err != nil {
		log.Printf("[session] не удалось удалить токен: %v", err)
	}

	s.mu.Lock()
	s.user = nil
	s.permissions = nil
	s.mu.Unlock()

	if s.resetDomains != nil {
		s.resetDomains()
	}
	s.notify()
}

// Invalidate сбрасывает кэшированного пользователя (реакция на 401).
// Сетевых вызовов нет; редирект — забота UI.
func (s *SessionStore) Invalidate() {
	s.mu.Lock()
	changed := s.user != nil || len(s.permissions) > 0
	s.user = nil
	s.permissions = nil
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// ─────────────────────────── профиль

// refresh перечитывает канонический профиль с сервера. Мутации профиля
// не доверяют собственному ответу, чтобы частичные payload'ы не
// расходились с полной формой сущности.
func (s *SessionStore) refresh(ctx context.Context) {
	var resp models.AuthResponse
	if err := s.api.Get(ctx, "/auth/profile", &resp); err != nil {
		s.settle(nil, nil)
		return
	}
	s.settle(resp.User, resp.Permissions)
}

// UpdateProfile меняет профиль и перечитывает его с сервера.
func (s *SessionStore) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool {
	if err := s.api.Put(ctx, "/auth/profile", upd, nil); err != nil {
		return false
	}
	s.refresh(ctx)
	return true
}

// ChangePassword возвращает сообщение бэкенда, если оно есть.
func (s *SessionStore) ChangePassword(ctx context.Context, current, next string) (bool, string) {
	body := map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}
	if err := s.api.Put(ctx, "/auth/password", body, nil); err != nil {
		return false, backendMessage(err, "Не удалось изменить пароль")
	}
	return true, ""
}

// UploadAvatar загружает аватар (multipart, поле "avatar") и принимает
// обновлённый профиль из ответа.
func (s *SessionStore) UploadAvatar(ctx context.Context, file io.Reader, filename string) (bool, string) {
	var resp models.AuthResponse
	if err := s.api.PostMultipart(ctx, "/auth/profile/avatar", "avatar", filename, file, &resp); err != nil {
		return false, backendMessage(err, "Не удалось загрузить аватарку")
	}
	s.settle(resp.User, resp.Permissions)
	return true, ""
}

func (s *SessionStore) DeleteAvatar(ctx context.Context) (bool, string) {
	var resp models.AuthResponse
	if err := s.api.Delete(ctx, "/auth/profile/avatar", &resp); err != nil {
		return false, backendMessage(err, "Не удалось удалить аватарку")
	}
	s.settle(resp.User, resp.Permissions)
	return true, ""
}

// backendMessage предпочитает текст ошибки бэкенда запасному сообщению.
func backendMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
