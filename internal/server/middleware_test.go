package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"postfeed/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5173"

func newMiddlewareApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: testOrigin}}
	app := fiber.New(fiber.Config{ErrorHandler: srv.errorHandler})
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func send(t *testing.T, app *fiber.App, method string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/limited", nil)
	req.Header.Set("Origin", testOrigin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	app := newMiddlewareApp(t)

	for i := 0; i < 100; i++ {
		require.Equal(t, fiber.StatusOK, send(t, app, http.MethodGet).StatusCode)
	}

	resp := send(t, app, http.MethodGet)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_PreflightBypassesLimiter(t *testing.T) {
	app := newMiddlewareApp(t)

	for i := 0; i < 100; i++ {
		require.Equal(t, fiber.StatusOK, send(t, app, http.MethodPost).StatusCode)
	}
	require.Equal(t, fiber.StatusTooManyRequests, send(t, app, http.MethodPost).StatusCode)

	req := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_SecurityHeaders(t *testing.T) {
	app := newMiddlewareApp(t)

	resp := send(t, app, http.MethodGet)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/1"},
		{http.MethodDelete, "/posts/1"},
	} {
		res := ts.do(t, tc.method, tc.path, nil, "", "")
		assert.Equal(t, http.StatusUnauthorized, res.status, "%s %s", tc.method, tc.path)

		res = ts.do(t, tc.method, tc.path, nil, "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, res.status, "%s %s", tc.method, tc.path)
	}
}
