package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorum-booking/core/config"
	"quorum-booking/core/constants"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/booking/repository"
	notificationService "quorum-booking/modules/notification/service"
)

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{Store: config.StoreConfig{Driver: constants.StoreDriverMemory}}
	e, err := NewEcho(cfg, Dependencies{
		Store:      repository.NewMemoryStore(),
		Dispatcher: notificationService.LogDispatcher{},
	})
	require.NoError(t, err)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, actor string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actor != "" {
		req.Header.Set(constants.HeaderParticipantID, actor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	e := newTestServer(t)
	members := []string{"john@example.com", "sarah@example.com", "mike@example.com"}

	code, env := call(t, e, http.MethodPost, "/api/v1/bookings", "user@example.com", map[string]any{
		"resource_id": "discussion-room-a",
		"date":        "2025-09-20",
		"time_slot":   "08:00-10:00",
		"members":     members,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created struct {
		Booking     entity.Booking      `json:"booking"`
		Invitations []entity.Invitation `json:"invitations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Invitations, 3)

	for _, inv := range created.Invitations {
		code, env = call(t, e, http.MethodPost, "/api/v1/invitations/"+inv.ID+"/accept", inv.RecipientID, nil)
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	code, env = call(t, e, http.MethodGet, "/api/v1/bookings/"+created.Booking.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var b entity.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, entity.BookingStatusConfirmed, b.Status)

	code, env = call(t, e, http.MethodPost, "/api/v1/invitations/"+created.Invitations[0].ID+"/decline", created.Invitations[0].RecipientID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_RESOLVED", env.Code)

	code, env = call(t, e, http.MethodPost, "/api/v1/bookings/"+created.Booking.ID+"/cancel", members[1], nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_ORGANIZER", env.Code)

	code, _ = call(t, e, http.MethodPost, "/api/v1/bookings/"+created.Booking.ID+"/cancel", "user@example.com", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = call(t, e, http.MethodPost, "/api/v1/bookings/"+created.Booking.ID+"/leave", members[2], nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "TERMINAL_STATE", env.Code)
}

func TestCreateBookingErrorsOverHTTP(t *testing.T) {
	e := newTestServer(t)

	code, env := call(t, e, http.MethodPost, "/api/v1/bookings", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	code, env = call(t, e, http.MethodPost, "/api/v1/bookings", "o@example.com", map[string]any{
		"resource_id": "discussion-room-a", "date": "2025-09-20", "time_slot": "08:00-10:00",
		"members": []string{"a@example.com", "b@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_PARTICIPANTS", env.Code)

	code, env = call(t, e, http.MethodPost, "/api/v1/bookings", "o@example.com", map[string]any{
		"resource_id": "boardroom", "date": "2025-09-20", "time_slot": "08:00-10:00",
		"members": []string{"a@example.com", "b@example.com", "c@example.com"},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestReadEndpoints(t *testing.T) {
	e := newTestServer(t)
	code, _ := call(t, e, http.MethodPost, "/api/v1/bookings", "o@example.com", map[string]any{
		"resource_id": "discussion-room-b", "date": "2025-09-20", "time_slot": "10:00-12:00",
		"members": []string{"a@example.com", "b@example.com", "c@example.com"},
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, e, http.MethodGet, "/api/v1/resources/discussion-room-b/availability?date=2025-09-20", "", nil)
	require.Equal(t, http.StatusOK, code)
	var free []string
	require.NoError(t, json.Unmarshal(env.Data, &free))
	assert.NotContains(t, free, "10:00-12:00")
	assert.Len(t, free, 5)

	code, env = call(t, e, http.MethodGet, "/api/v1/me/bookings?date=2025-09-20", "a@example.com", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total_items":1`)

	code, env = call(t, e, http.MethodGet, "/api/v1/bookings?status=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", env.Code)

	code, env = call(t, e, http.MethodGet, "/api/v1/invitations/count", "a@example.com", nil)
	require.Equal(t, http.StatusOK, code)
	var count struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &count))
	assert.Equal(t, 1, count.Count)

	code, env = call(t, e, http.MethodGet, "/api/v1/overview?date=2025-09-20", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"bookings_on_date":1`)

	code, env = call(t, e, http.MethodGet, "/api/v1/directory/john@example.com", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "John Smith")
}

func TestHugePageNumberOverHTTP(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{
		"/api/v1/bookings?page=922337203685477582&limit=10",
		"/api/v1/me/bookings?page=9223372036854775807&limit=1",
		"/api/v1/invitations?page=922337203685477582&limit=10",
	} {
		t.Run(path, func(t *testing.T) {
			code, env := call(t, e, http.MethodGet, path, "a@example.com", nil)
			assert.Equal(t, http.StatusOK, code)
			assert.Contains(t, string(env.Data), `"items":[]`)
		})
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	e := newTestServer(t)
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"store":"ok"}`, rec.Body.String())
}

func TestOpenWithMemoryStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: constants.StoreDriverMemory}}
	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &repository.MemoryStore{}, app.deps.Store)
	assert.IsType(t, notificationService.LogDispatcher{}, app.deps.Dispatcher)
	assert.NoError(t, app.Migrate(context.Background()))
	assert.Error(t, app.Work(context.Background()))
}
