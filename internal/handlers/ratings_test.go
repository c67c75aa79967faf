package handlers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRatingFlowOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)
	bob := e.seedUser(t, "bob", "pw", false)

	e.request(t, fiber.MethodPost, "/api/solutions/", e.token(t, alice), fiber.Map{"name": "Widget"})

	resp, body := e.request(t, fiber.MethodPost, "/api/solutions/widget/ratings", e.token(t, alice), fiber.Map{
		"score":   4,
		"comment": "solid",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	ratingID := data(t, body)["id"]

	resp, body = e.request(t, fiber.MethodPost, "/api/solutions/widget/ratings", e.token(t, bob), fiber.Map{
		"score": 2,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}

	// Re-posting replaces, it does not duplicate. A quoted score is accepted
	// the way form-ish clients send it.
	resp, body = e.request(t, fiber.MethodPost, "/api/solutions/widget/ratings", e.token(t, bob), fiber.Map{
		"score": "3",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	if data(t, body)["score"] != float64(3) {
		t.Errorf("Expected the string score to parse as 3, got %v", body)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/widget/ratings/summary", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	summary := data(t, body)
	if summary["count"] != float64(2) {
		t.Errorf("Expected count 2, got %v", summary)
	}
	if summary["average"] != 3.5 {
		t.Errorf("Expected average 3.5, got %v", summary)
	}

	resp, _ = e.request(t, fiber.MethodPost, "/api/solutions/widget/ratings", e.token(t, alice), fiber.Map{
		"score": 9,
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for an out-of-range score, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, fiber.MethodDelete, fmt.Sprintf("/api/ratings/%v", ratingID), e.token(t, bob), nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("Expected 403 deleting another user's rating, got %d", resp.StatusCode)
	}
	resp, _ = e.request(t, fiber.MethodDelete, fmt.Sprintf("/api/ratings/%v", ratingID), e.token(t, alice), nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestCommentFlowOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "alice", "pw", false)

	e.request(t, fiber.MethodPost, "/api/solutions/", e.token(t, alice), fiber.Map{"name": "Widget"})

	resp, body := e.request(t, fiber.MethodPost, "/api/solutions/widget/comments", e.token(t, alice), fiber.Map{
		"content": "works well for us",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	commentID := data(t, body)["id"]

	resp, _ = e.request(t, fiber.MethodPost, "/api/solutions/widget/comments", e.token(t, alice), fiber.Map{
		"content": "   ",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for a blank comment, got %d", resp.StatusCode)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/solutions/widget/comments", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 comment, got %v", body)
	}

	resp, body = e.request(t, fiber.MethodPut, fmt.Sprintf("/api/comments/%v", commentID), e.token(t, alice), fiber.Map{
		"content": "edited",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	if data(t, body)["content"] != "edited" {
		t.Errorf("Edit not applied: %v", body)
	}

	resp, body = e.request(t, fiber.MethodGet, "/api/comments/my", e.token(t, alice), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 own comment, got %v", body)
	}
}
