package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/token"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("тестовый ключ"))
	require.NoError(t, err)
	return raw
}

func TestParseReadsClaims(t *testing.T) {
	raw := sign(t, token.Claims{
		UserID: 7,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := token.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 7, claims.UserID)
	require.Equal(t, "admin", claims.Role)
}

func TestExpired(t *testing.T) {
	alive := sign(t, token.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	dead := sign(t, token.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})

	require.False(t, token.Expired(alive))
	require.True(t, token.Expired(dead))
}

func TestExpiredWithoutExpClaim(t *testing.T) {
	raw := sign(t, token.Claims{UserID: 1})
	require.False(t, token.Expired(raw), "без exp срок жизни решает сервер")
}

func TestGarbageTokenIsExpired(t *testing.T) {
	require.True(t, token.Expired("не jwt вовсе"))
	require.True(t, token.Expired("header.payload.signature"))

	_, err := token.Parse("abc")
	require.Error(t, err)
}
