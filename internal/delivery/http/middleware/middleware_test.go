package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hireboard/internal/pkg/jwt"
	"hireboard/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(log).Middleware())
	app.Use(NewErrorMiddleware(log).Middleware())
	return app, hook
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, response.SemanticResponse, http.Header) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body response.SemanticResponse
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body, resp.Header
}

func TestErrorMiddlewareMasksInternalErrors(t *testing.T) {
	app, hook := newTestApp(t)
	app.Get("/boom", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "pq: relation does not exist", nil, errors.New("db down"))
	})

	status, body, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, body.Message)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "request failed" {
			logged = true
			assert.NotEmpty(t, e.Data["rid"])
		}
	}
	assert.True(t, logged)
}

func TestErrorMiddlewareKeepsClientAndUnavailableMessages(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/missing", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "Job not found", nil, nil)
	})
	app.Get("/busy", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusServiceUnavailable, "Temporarily unavailable, please retry", nil, nil)
	})
	app.Get("/fields", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", map[string]string{"title": "Title is required"}, nil)
	})

	status, body, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Job not found", body.Message)

	status, body, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/busy", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Temporarily unavailable, please retry", body.Message)

	status, body, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/fields", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, map[string]any{"title": "Title is required"}, body.Data)
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app, hook := newTestApp(t)
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("nil map")
	})

	status, body, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, body.Message)
	require.NotNil(t, hook.LastEntry())
}

func TestAccessLogPropagatesRequestID(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/ok", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, response.MessageOK, RequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	status, body, hdr := call(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "req-123", body.Data)
	assert.Equal(t, "req-123", hdr.Get("X-Request-ID"))
}

func TestFaultMiddleware(t *testing.T) {
	log, _ := test.NewNullLogger()
	fault := NewFaultMiddleware(0.5, log)
	rolls := []float64{0.1, 0.9}
	fault.roll = func() float64 {
		r := rolls[0]
		rolls = rolls[1:]
		return r
	}

	app, _ := newTestApp(t)
	app.Use(fault.Middleware())
	app.Post("/jobs", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusCreated, response.MessageCreated, nil)
	})
	app.Get("/jobs", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
	})

	status, body, _ := call(t, app, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Injected failure, please retry", body.Message)

	status, _, _ = call(t, app, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	assert.Equal(t, http.StatusCreated, status)

	// reads never roll
	status, _, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, rolls)

	assert.False(t, NewFaultMiddleware(0, log).Enabled())
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("access", "refresh", time.Minute, time.Hour)
	uid := uuid.New()

	app, _ := newTestApp(t)
	app.Get("/me", NewAuthMiddleware(svc).Middleware(), func(c fiber.Ctx) error {
		id, ok := UserID(c)
		require.True(t, ok)
		assert.Equal(t, uid, id)
		return response.Success(c, fiber.StatusOK, response.MessageOK, Author(c))
	})

	status, _, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	refresh, err := svc.GenerateRefreshToken(uid)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	status, _, _ = call(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	access, err := svc.GenerateAccessToken(uid, "rita@example.com", "")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	status, body, _ := call(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rita@example.com", body.Data)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}
