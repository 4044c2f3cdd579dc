package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomcast/internal/registry"
)

func TestListRooms(t *testing.T) {
	reg := registry.New()
	reg.GetOrCreate("general").Join("alice")
	reg.GetOrCreate("random")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewRoomHandler(reg)
	require.NoError(t, handler.ListRooms(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rooms []struct {
			Name   string `json:"name"`
			Online int    `json:"online"`
		} `json:"rooms"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)

	online := map[string]int{}
	for _, r := range body.Rooms {
		online[r.Name] = r.Online
	}
	assert.Equal(t, 1, online["general"])
	assert.Equal(t, 0, online["random"])
}

func TestGetPresence(t *testing.T) {
	reg := registry.New()
	room := reg.GetOrCreate("general")
	room.Join("alice")
	room.Join("bob")

	e := echo.New()
	handler := NewRoomHandler(reg)

	t.Run("known room reports its member count", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("name")
		c.SetParamValues("general")

		require.NoError(t, handler.GetPresence(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Room   string `json:"room"`
			Online int    `json:"online"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "general", body.Room)
		assert.Equal(t, 2, body.Online)
	})

	t.Run("unknown room reports zero", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("name")
		c.SetParamValues("nowhere")

		require.NoError(t, handler.GetPresence(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Online int `json:"online"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Online)
	})
}
