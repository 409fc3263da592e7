package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ravindrauiet/relove-backend/config"
)

// newTestApp wires the full route table. The mongo client connects lazily,
// so no server is needed as long as requests stop at the auth gate.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	app := fiber.New()
	setupRoutes(app, client.Database("relove_test"), &config.Config{OfferTTLHours: 48})
	return app
}

func request(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

// Admin user operations live at /api/users[/:id]. An unauthenticated request
// must reach the auth gate (401), proving the route is mounted; an unknown
// path would 404 instead.
func TestAdminUserRoutes(t *testing.T) {
	app := newTestApp(t)

	if got := request(t, app, "GET", "/api/users"); got != fiber.StatusUnauthorized {
		t.Errorf("GET /api/users: expected 401, got %d", got)
	}
	if got := request(t, app, "DELETE", "/api/users/507f1f77bcf86cd799439011"); got != fiber.StatusUnauthorized {
		t.Errorf("DELETE /api/users/:id: expected 401, got %d", got)
	}
}

// The static cart and favorites paths keep winning over the :id parameter.
func TestUserAggregateRoutesStillMounted(t *testing.T) {
	app := newTestApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{"DELETE", "/api/users/cart"},
		{"DELETE", "/api/users/cart/507f1f77bcf86cd799439011"},
		{"GET", "/api/users/favorites"},
		{"GET", "/api/users/profile"},
	}
	for _, p := range paths {
		if got := request(t, app, p.method, p.path); got != fiber.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, got)
		}
	}
}
