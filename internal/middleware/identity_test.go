package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomcast/internal/domain"
)

// fakeProvider resolves a single known token.
type fakeProvider struct {
	token    string
	username string
}

func (f *fakeProvider) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token != f.token {
		return domain.Anonymous, fmt.Errorf("unknown token")
	}
	return domain.Identity{Username: f.username, Authenticated: true}, nil
}

func runIdentity(t *testing.T, provider domain.IdentityProvider, mutate func(*http.Request)) domain.Identity {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Identity
	handler := Identity(provider)(func(c echo.Context) error {
		got = IdentityFromEcho(c)
		return nil
	})
	require.NoError(t, handler(c))
	return got
}

func TestIdentityMiddleware(t *testing.T) {
	provider := &fakeProvider{token: "secret", username: "alice"}

	t.Run("resolves token from cookie", func(t *testing.T) {
		got := runIdentity(t, provider, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "auth_token", Value: "secret"})
		})
		assert.True(t, got.Authenticated)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("resolves token from bearer header", func(t *testing.T) {
		got := runIdentity(t, provider, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer secret")
		})
		assert.True(t, got.Authenticated)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("missing token degrades to anonymous", func(t *testing.T) {
		got := runIdentity(t, provider, nil)
		assert.False(t, got.Authenticated)
	})

	t.Run("rejected token degrades to anonymous", func(t *testing.T) {
		got := runIdentity(t, provider, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "auth_token", Value: "wrong"})
		})
		assert.False(t, got.Authenticated)
	})

	t.Run("nil provider yields anonymous", func(t *testing.T) {
		got := runIdentity(t, nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "auth_token", Value: "secret"})
		})
		assert.False(t, got.Authenticated)
	})
}

func TestIdentityFromEchoWithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, domain.Anonymous, IdentityFromEcho(c))
}
