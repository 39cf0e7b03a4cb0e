// Хранение bearer-токена между запусками — аналог ключа "token"
// в localStorage веб-клиента. Токен живёт до явного logout.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKeeper отдаёт и сохраняет bearer-токен сессии.
type TokenKeeper interface {
	// Token возвращает сохранённый токен или пустую строку.
	Token() string
	// SetToken сохраняет токен.
	SetToken(token string) error
	// Clear удаляет сохранённый токен.
	Clear() error
}

// File хранит токен в одном файле с правами 0600.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile создаёт файловое хранилище токена по указанному пути.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		// отсутствие файла — нормальное состояние «нет сессии»
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *File) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("создание каталога токена: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("запись токена: %w", err)
	}
	return nil
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление токена: %w", err)
	}
	return nil
}

// Memory — хранилище токена в памяти, для тестов.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
