package stores_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/models"
	"github.com/egor/portfolioclient/storage"
	"github.com/egor/portfolioclient/stores"
	"github.com/egor/portfolioclient/stub"
)

// Учётные записи, засеянные стабом.
const (
	adminEmail     = "admin@portfolio.local"
	moderatorEmail = "moderator@portfolio.local"
	clientEmail    = "client@portfolio.local"
	seedPassword   = "password"
)

// env — стаб бэкенда, поднятый на httptest, и фабрика клиентов к нему.
type env struct {
	t    *testing.T
	stub *stub.Server
	srv  *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	backend := stub.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return &env{t: t, stub: backend, srv: srv}
}

// newClient создаёт независимый реестр сторов поверх стаба — как два
// разных устройства, вошедших в один бэкенд.
func (e *env) newClient() (*stores.Registry, storage.TokenKeeper) {
	keeper := storage.NewMemory()
	client := api.NewClient(e.srv.URL+"/api", 5*time.Second, keeper)
	return stores.New(client, keeper), keeper
}

// loginAs создаёт клиента и входит указанным пользователем.
func (e *env) loginAs(email string) *stores.Registry {
	e.t.Helper()
	reg, _ := e.newClient()
	ok := reg.Session.Login(context.Background(), models.Credentials{Email: email, Password: seedPassword})
	require.True(e.t, ok, "вход %s должен быть успешным", email)
	return reg
}

// registerUser регистрирует нового пользователя и возвращает его реестр.
func (e *env) registerUser(email, first string) *stores.Registry {
	e.t.Helper()
	reg, _ := e.newClient()
	ok := reg.Session.Register(context.Background(), models.RegisterData{
		Email:     email,
		Password:  "secret123",
		FirstName: first,
	})
	require.True(e.t, ok, "регистрация %s должна быть успешной", email)
	return reg
}

func TestRegistryResetOnLogout(t *testing.T) {
	e := newEnv(t)
	reg := e.loginAs(clientEmail)
	ctx := context.Background()

	reg.Projects.LoadMyProjects(ctx)
	require.NotEmpty(t, reg.Projects.Projects())
	reg.Notifications.Load(ctx)
	require.NotEmpty(t, reg.Notifications.Notifications())

	reg.Session.Logout(ctx)

	require.False(t, reg.Session.IsAuthenticated())
	require.Empty(t, reg.Projects.Projects(), "выход должен сбрасывать доменные сторы")
	require.Empty(t, reg.Notifications.Notifications())
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	e := newEnv(t)
	reg, keeper := e.newClient()
	ctx := context.Background()

	ok := reg.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword})
	require.True(t, ok)
	require.True(t, reg.Session.IsAuthenticated())

	// токен испорчен: первый же запрос получает 401 и валит сессию
	require.NoError(t, keeper.SetToken("мусор"))
	reg.Projects.LoadMyProjects(ctx)

	require.False(t, reg.Session.IsAuthenticated(),
		"ответ 401 должен инвалидировать сессию")
}

func TestSubscribeNotifies(t *testing.T) {
	e := newEnv(t)
	reg, _ := e.newClient()

	calls := 0
	unsubscribe := reg.Reviews.Subscribe(func() { calls++ })

	reg.Reviews.LoadReviews(context.Background())
	require.GreaterOrEqual(t, calls, 2, "подписчик видит начало и конец загрузки")

	unsubscribe()
	before := calls
	reg.Reviews.ClearError()
	require.Equal(t, before, calls, "после отписки оповещений нет")
}
