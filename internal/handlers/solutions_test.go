package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSolutionCreateRequiresAuth(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.request(t, fiber.MethodPost, "/api/solutions/", "", fiber.Map{"name": "Widget"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestSolutionLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	token := e.token(t, alice)

	resp, body := e.request(t, fiber.MethodPost, "/api/solutions/", token, fiber.Map{
		"name":        "Widget Service",
		"description": "does widget things",
		"category":    "Infrastructure",
		"tags":        []string{"Go", "gRPC"},
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	created := data(t, body)
	if created["slug"] != "widget-service" {
		t.Errorf("Expected slug widget-service, got %v", created["slug"])
	}
	tags, _ := created["tags"].([]interface{})
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "grpc" {
		t.Errorf("Expected canonical tags [go grpc], got %v", tags)
	}

	// Public read without a token.
	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/widget-service", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if data(t, body)["name"] != "Widget Service" {
		t.Errorf("Unexpected solution body: %v", body)
	}

	// List envelope carries pagination fields.
	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/?category=Infrastructure", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["total"] != float64(1) {
		t.Errorf("Expected total 1, got %v", body["total"])
	}

	resp, body = e.request(t, fiber.MethodPut, "/api/solutions/widget-service", token, fiber.Map{
		"description": "updated description",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	if data(t, body)["description"] != "updated description" {
		t.Errorf("Update not applied: %v", body)
	}

	resp, _ = e.request(t, fiber.MethodDelete, "/api/solutions/widget-service", token, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/widget-service", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", resp.StatusCode)
	}
	if body["ok"] != false || body["type"] != "solution.notfound" {
		t.Errorf("Unexpected error envelope: %v", body)
	}
}

func TestSolutionUpdateForbiddenForNonOwner(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	mallory := e.seedUser(t, "mallory", "pw", false)

	resp, body := e.request(t, fiber.MethodPost, "/api/solutions/", e.token(t, alice), fiber.Map{"name": "Widget"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}

	resp, body = e.request(t, fiber.MethodPut, "/api/solutions/widget", e.token(t, mallory), fiber.Map{
		"description": "defaced",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %v", resp.StatusCode, body)
	}
}

func TestSolutionCheckNameAndSearch(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	token := e.token(t, alice)

	resp, body := e.request(t, fiber.MethodGet, "/api/solutions/check-name/Widget", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	check := data(t, body)
	if check["available"] != true || check["slug"] != "widget" {
		t.Errorf("Unexpected check-name body: %v", check)
	}

	e.request(t, fiber.MethodPost, "/api/solutions/", token, fiber.Map{"name": "Widget"})

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/check-name/widget", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if data(t, body)["available"] != false {
		t.Errorf("Expected the name to be taken: %v", body)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/search?q=widget", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	hits, _ := body["data"].([]interface{})
	if len(hits) != 1 {
		t.Errorf("Expected 1 search hit, got %v", body)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/search", "", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for a missing keyword, got %d: %v", resp.StatusCode, body)
	}
}

func TestSolutionTagRoutes(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	token := e.token(t, alice)

	e.request(t, fiber.MethodPost, "/api/solutions/", token, fiber.Map{"name": "Widget"})

	resp, body := e.request(t, fiber.MethodPost, "/api/solutions/widget/tag/Machine%20Learning", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}

	// The escaped form must land on the canonical row, not a mangled one.
	resp, body = e.request(t, fiber.MethodGet, "/api/tags/machine-learning", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected the canonical tag to exist, got %d: %v", resp.StatusCode, body)
	}

	resp, _ = e.request(t, fiber.MethodPost, "/api/solutions/widget/tag/machine-learning", token, nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("Expected 409 re-adding an attached tag, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, fiber.MethodDelete, "/api/solutions/widget/tag/machine-learning", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestSolutionHistoryRoute(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	token := e.token(t, alice)

	e.request(t, fiber.MethodPost, "/api/solutions/", token, fiber.Map{"name": "Widget"})
	e.request(t, fiber.MethodPut, "/api/solutions/widget", token, fiber.Map{"stage": "UAT"})

	resp, body := e.request(t, fiber.MethodGet, "/api/solutions/widget/history", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["total"] != float64(2) {
		t.Errorf("Expected create and update records, got %v", body)
	}

	resp, _ = e.request(t, fiber.MethodGet, "/api/solutions/nope/history", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected 404 for an unknown solution, got %d", resp.StatusCode)
	}
}

func TestUnmatchedRouteEnvelope(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, fiber.MethodGet, "/api/no-such-route", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	if body["ok"] != false || body["message"] != "[404] Resource Not Found" {
		t.Errorf("Unexpected 404 envelope: %v", body)
	}
	if body["url"] != "/api/no-such-route" {
		t.Errorf("Expected the request url echoed back, got %v", body["url"])
	}
}
