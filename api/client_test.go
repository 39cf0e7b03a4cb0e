package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/storage"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *storage.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	keeper := storage.NewMemory()
	return api.NewClient(srv.URL, 5*time.Second, keeper), keeper
}

func TestSendInjectsHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	client, keeper := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))
	require.NoError(t, keeper.SetToken("abc.def.ghi"))

	require.NoError(t, client.Get(context.Background(), "/ping", nil))

	require.Equal(t, "Bearer abc.def.ghi", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var hasAuth bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.Get(context.Background(), "/ping", nil))
	require.False(t, hasAuth)
}

func TestErrorMessageFromBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Email уже занят"}`))
	}))

	err := client.Post(context.Background(), "/auth/register", map[string]string{}, nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "Email уже занят", apiErr.Message)
}

func TestErrorFieldFallback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"неверные данные"}`))
	}))

	err := client.Get(context.Background(), "/x", nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "неверные данные", apiErr.Message)
}

func TestErrorStatusTextWhenBodyUnreadable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>oops</html>`))
	}))

	err := client.Get(context.Background(), "/x", nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
}

func TestTransportErrorHasZeroStatus(t *testing.T) {
	keeper := storage.NewMemory()
	// порт из резерва, слушателя нет
	client := api.NewClient("http://127.0.0.1:1", time.Second, keeper)

	err := client.Get(context.Background(), "/x", nil)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, apiErr.StatusCode)
	require.Equal(t, "сервер недоступен, попробуйте позже", apiErr.Message)
}

func TestUnauthorizedHookFires(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"токен истёк"}`))
	}))

	var fired atomic.Int32
	client.OnUnauthorized(func() { fired.Add(1) })

	err := client.Get(context.Background(), "/auth/check", nil)
	require.Error(t, err)
	require.EqualValues(t, 1, fired.Load())

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestDecodeResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":42,"name":"проект"}`))
	}))

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, client.Post(context.Background(), "/x", map[string]string{"k": "v"}, &out))
	require.Equal(t, 42, out.ID)
	require.Equal(t, "проект", out.Name)
}

func TestContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "/slow", nil)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, apiErr.StatusCode)
}
