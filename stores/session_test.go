package stores_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/models"
)

func TestLoginSuccess(t *testing.T) {
	e := newEnv(t)
	reg, keeper := e.newClient()
	ctx := context.Background()

	ok := reg.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword})

	require.True(t, ok)
	require.True(t, reg.Session.IsAuthenticated())
	require.Equal(t, clientEmail, reg.Session.User().Email)
	require.Empty(t, reg.Session.Err())
	require.NotEmpty(t, keeper.Token(), "токен должен сохраниться в хранилище")
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	reg, _ := e.newClient()

	ok := reg.Session.Login(context.Background(), models.Credentials{Email: clientEmail, Password: "не тот"})

	require.False(t, ok)
	require.False(t, reg.Session.IsAuthenticated())
	require.NotEmpty(t, reg.Session.Err())
	require.Nil(t, reg.Session.User())
}

// Инвариант: IsAuthenticated ⇔ user != nil на всех переходах сессии.
func TestAuthenticatedMatchesUser(t *testing.T) {
	e := newEnv(t)
	reg, _ := e.newClient()
	ctx := context.Background()

	check := func(step string) {
		require.Equal(t, reg.Session.User() != nil, reg.Session.IsAuthenticated(), step)
	}

	check("до входа")
	reg.Session.CheckAuth(ctx)
	check("после холодного CheckAuth")
	reg.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword})
	check("после входа")
	reg.Session.Logout(ctx)
	check("после выхода")
}

func TestCheckAuthColdStart(t *testing.T) {
	e := newEnv(t)
	reg, _ := e.newClient()

	reg.Session.CheckAuth(context.Background())

	// отсутствие сессии — не ошибка
	require.False(t, reg.Session.IsAuthenticated())
	require.False(t, reg.Session.IsLoading())
	require.Empty(t, reg.Session.Err())
}

func TestCheckAuthRestoresSession(t *testing.T) {
	e := newEnv(t)
	reg, keeper := e.newClient()
	ctx := context.Background()

	require.True(t, reg.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword}))

	// «перезапуск приложения»: новый реестр с тем же токеном
	reg2, keeper2 := e.newClient()
	require.NoError(t, keeper2.SetToken(keeper.Token()))
	reg2.Session.CheckAuth(ctx)

	require.True(t, reg2.Session.IsAuthenticated())
	require.Equal(t, clientEmail, reg2.Session.User().Email)
}

func TestCheckAuthExpiredTokenSkipsRequest(t *testing.T) {
	e := newEnv(t)
	reg, keeper := e.newClient()

	// нечитаемый токен считается истёкшим: на сервер не ходим
	require.NoError(t, keeper.SetToken("header.payload.signature"))
	reg.Session.CheckAuth(context.Background())

	require.False(t, reg.Session.IsAuthenticated())
	require.Empty(t, reg.Session.Err())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	reg, _ := e.newClient()
	ctx := context.Background()

	data := models.RegisterData{Email: "dup@example.com", Password: "secret123"}
	require.True(t, reg.Session.Register(ctx, data))

	other, _ := e.newClient()
	require.False(t, other.Session.Register(ctx, data))
	require.NotEmpty(t, other.Session.Err())
	require.False(t, other.Session.IsAuthenticated())
}

func TestRoleGetters(t *testing.T) {
	e := newEnv(t)

	admin := e.loginAs(adminEmail)
	require.True(t, admin.Session.IsAdmin())
	require.True(t, admin.Session.IsModerator(), "админ проходит и как модератор")

	moderator := e.loginAs(moderatorEmail)
	require.False(t, moderator.Session.IsAdmin())
	require.True(t, moderator.Session.IsModerator())

	user := e.loginAs(clientEmail)
	require.False(t, user.Session.IsAdmin())
	require.False(t, user.Session.IsModerator())
}

func TestUpdateProfileRefetchesCanonical(t *testing.T) {
	e := newEnv(t)
	reg := e.loginAs(clientEmail)
	ctx := context.Background()

	ok := reg.Session.UpdateProfile(ctx, models.ProfileUpdate{
		FirstName: "Новое",
		LastName:  "Имя",
		Telegram:  "@new",
	})

	require.True(t, ok)
	user := reg.Session.User()
	require.Equal(t, "Новое", user.FirstName)
	require.Equal(t, "@new", user.Telegram)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	e := newEnv(t)
	reg := e.loginAs(clientEmail)

	ok, msg := reg.Session.ChangePassword(context.Background(), "не тот", "новый-пароль")

	require.False(t, ok)
	require.Equal(t, "Неверный текущий пароль", msg, "сообщение бэкенда доходит до вызывающего")
}

func TestChangePasswordThenLogin(t *testing.T) {
	e := newEnv(t)
	reg := e.loginAs(clientEmail)
	ctx := context.Background()

	ok, msg := reg.Session.ChangePassword(ctx, seedPassword, "новый-пароль")
	require.True(t, ok, msg)

	fresh, _ := e.newClient()
	require.False(t, fresh.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword}))
	require.True(t, fresh.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: "новый-пароль"}))
}

func TestAvatarUploadAndDelete(t *testing.T) {
	e := newEnv(t)
	reg := e.loginAs(clientEmail)
	ctx := context.Background()

	ok, msg := reg.Session.UploadAvatar(ctx, strings.NewReader("png-данные"), "avatar.png")
	require.True(t, ok, msg)
	require.NotNil(t, reg.Session.User().AvatarURL)

	ok, msg = reg.Session.DeleteAvatar(ctx)
	require.True(t, ok, msg)
	require.Nil(t, reg.Session.User().AvatarURL)
}

func TestLogoutIsOptimistic(t *testing.T) {
	e := newEnv(t)
	reg, keeper := e.newClient()
	ctx := context.Background()

	require.True(t, reg.Session.Login(ctx, models.Credentials{Email: clientEmail, Password: seedPassword}))

	// сервер лежит, но локальное состояние всё равно очищается
	e.stub.ForceFailure(500)
	defer e.stub.ForceFailure(0)
	reg.Session.Logout(ctx)

	require.False(t, reg.Session.IsAuthenticated())
	require.Empty(t, keeper.Token(), "токен удаляется даже при сбое серверного logout")
}
