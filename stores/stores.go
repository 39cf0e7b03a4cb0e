package stores

import (
	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/storage"
)

// Registry собирает все сторы приложения. Создаётся один раз на старте
// и передаётся потребителям по ссылке; глобальных синглтонов нет.
type Registry struct {
	Session       *SessionStore
	Projects      *ProjectsStore
	Reviews       *ReviewsStore
	Admin         *AdminStore
	Contact       *ContactStore
	Notifications *NotificationsStore
	Messages      *MessagesStore
}

// New создаёт реестр сторов поверх клиента API. Ответ 401 от любого
// запроса инвалидирует сессию; выход из аккаунта сбрасывает доменные
// сторы.
func New(client *api.Client, keeper storage.TokenKeeper) *Registry {
	r := &Registry{
		Session:       NewSessionStore(client, keeper),
		Projects:      NewProjectsStore(client),
		Reviews:       NewReviewsStore(client),
		Admin:         NewAdminStore(client),
		Contact:       NewContactStore(client),
		Notifications: NewNotificationsStore(client),
		Messages:      NewMessagesStore(client),
	}

	r.Session.resetDomains = r.ResetDomains
	client.OnUnauthorized(r.Session.Invalidate)

	return r
}

// ResetDomains сбрасывает все сторы, кроме сессионного. Публичные
// отзывы тоже очищаются: следующая страница их перечитает.
func (r *Registry) ResetDomains() {
	r.Projects.Reset()
	r.Reviews.Reset()
	r.Admin.Reset()
	r.Contact.Reset()
	r.Notifications.Reset()
	r.Messages.Reset()
}
