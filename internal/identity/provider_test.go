package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider("alice-token:alice, bob-token:bob,malformed,:nobody")

	t.Run("resolves known tokens", func(t *testing.T) {
		id, err := provider.Resolve(context.Background(), "alice-token")
		require.NoError(t, err)
		assert.True(t, id.Authenticated)
		assert.Equal(t, "alice", id.Username)
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		id, err := provider.Resolve(context.Background(), "nope")
		assert.Error(t, err)
		assert.False(t, id.Authenticated)
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		_, err := provider.Resolve(context.Background(), "malformed")
		assert.Error(t, err)
	})
}

func TestHTTPProvider(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)

		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"username":"alice"}`))
		case "Bearer empty-token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"username":""}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	provider := NewHTTPProvider(ts.URL + "/")

	t.Run("resolves a valid token", func(t *testing.T) {
		id, err := provider.Resolve(context.Background(), "good-token")
		require.NoError(t, err)
		assert.True(t, id.Authenticated)
		assert.Equal(t, "alice", id.Username)
	})

	t.Run("rejected token stays anonymous", func(t *testing.T) {
		id, err := provider.Resolve(context.Background(), "bad-token")
		assert.Error(t, err)
		assert.False(t, id.Authenticated)
	})

	t.Run("empty username is an error", func(t *testing.T) {
		_, err := provider.Resolve(context.Background(), "empty-token")
		assert.Error(t, err)
	})
}
