package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/ravindrauiet/relove-backend/config"
)

// The missing-token and rejected-token paths never reach the user store, so
// the handler can run without one.
func newVerifyTokenApp() *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(nil, &config.Config{AuthJWTSecret: "test-secret"})
	app.Post("/api/auth/verify-token", h.VerifyToken)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestVerifyToken_MissingToken(t *testing.T) {
	app := newVerifyTokenApp()

	if got := postJSON(t, app, "/api/auth/verify-token", `{}`); got != fiber.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", got)
	}
	if got := postJSON(t, app, "/api/auth/verify-token", `{"token":""}`); got != fiber.StatusUnauthorized {
		t.Fatalf("empty token: expected 401, got %d", got)
	}
}

func TestVerifyToken_RejectedToken(t *testing.T) {
	app := newVerifyTokenApp()

	if got := postJSON(t, app, "/api/auth/verify-token", `{"token":"not.a.token"}`); got != fiber.StatusUnauthorized {
		t.Fatalf("rejected token: expected 401, got %d", got)
	}
}

func TestVerifyToken_MalformedBody(t *testing.T) {
	app := newVerifyTokenApp()

	if got := postJSON(t, app, "/api/auth/verify-token", `{"token":`); got != fiber.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", got)
	}
}
