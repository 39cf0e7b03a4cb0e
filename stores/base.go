// Пакет stores — наблюдаемые кэши поверх REST API. Каждый стор владеет
// своим срезом состояния, мутирует его только собственными методами и
// после каждой мутации синхронно оповещает подписчиков. Читатели
// получают снимки-копии.
package stores

import (
	"sync"
)

// signal — простая подписка на изменения стора. Оповещение синхронное
// и происходит после фиксации мутации, вне блокировки состояния, так
// что подписчик может сразу читать снимки.
type signal struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
func (s *signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *signal) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
