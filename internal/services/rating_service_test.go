package services

import (
	"testing"

	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
)

func TestRatingUpsertKeepsSingleRowPerUser(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	sol := mustCreateSolution(t, r, "Widget", alice)

	first, err := r.ratings.Upsert(sol.Slug, "alice", 3, "decent")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	second, err := r.ratings.Upsert(sol.Slug, "alice", 5, "grew on me")
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected the same rating row, got %s then %s", first.ID, second.ID)
	}
	if second.Score != 5 || second.Comment != "grew on me" {
		t.Errorf("Expected updated score/comment, got %d %q", second.Score, second.Comment)
	}

	var count int64
	r.db.Model(&models.Rating{}).Where("solution_id = ?", sol.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 rating row, got %d", count)
	}
}

func TestRatingUpsertValidation(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	sol := mustCreateSolution(t, r, "Widget", alice)

	if _, err := r.ratings.Upsert(sol.Slug, "alice", 0, ""); !types.IsInvalidArgument(err) {
		t.Errorf("Expected InvalidArgument for score 0, got %v", err)
	}
	if _, err := r.ratings.Upsert(sol.Slug, "alice", 6, ""); !types.IsInvalidArgument(err) {
		t.Errorf("Expected InvalidArgument for score 6, got %v", err)
	}
	if _, err := r.ratings.Upsert("no-such-solution", "alice", 4, ""); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound for an unknown solution, got %v", err)
	}
}

func TestRatingSummary(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	sol := mustCreateSolution(t, r, "Widget", alice)

	for user, score := range map[string]int{"alice": 5, "bob": 5, "carol": 3} {
		if _, err := r.ratings.Upsert(sol.Slug, user, score, ""); err != nil {
			t.Fatalf("Upsert for %s failed: %v", user, err)
		}
	}

	summary, err := r.ratings.Summary(sol.Slug)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("Expected count 3, got %d", summary.Count)
	}
	want := (5.0 + 5.0 + 3.0) / 3.0
	if summary.Average != want {
		t.Errorf("Expected average %f, got %f", want, summary.Average)
	}
	if summary.Histogram[5] != 2 || summary.Histogram[3] != 1 || summary.Histogram[1] != 0 {
		t.Errorf("Unexpected histogram %v", summary.Histogram)
	}
}

func TestRatingSummaryEmpty(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	sol := mustCreateSolution(t, r, "Widget", alice)

	summary, err := r.ratings.Summary(sol.Slug)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Count != 0 || summary.Average != 0 {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
	if len(summary.Histogram) != 5 {
		t.Errorf("Expected all five buckets present, got %v", summary.Histogram)
	}
}

func TestRatingUpdateDeletePermissions(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	mallory := seedUser(t, r.db, "mallory", "pw", false)
	admin := seedUser(t, r.db, "root", "pw", true)
	sol := mustCreateSolution(t, r, "Widget", alice)

	rating, err := r.ratings.Upsert(sol.Slug, "alice", 4, "fine")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if _, err := r.ratings.Update(rating.ID, 1, "sabotage", mallory); !types.IsForbidden(err) {
		t.Errorf("Expected Forbidden for a non-author update, got %v", err)
	}
	if err := r.ratings.Delete(rating.ID, mallory); !types.IsForbidden(err) {
		t.Errorf("Expected Forbidden for a non-author delete, got %v", err)
	}

	got, err := r.ratings.Update(rating.ID, 2, "moderated", admin)
	if err != nil {
		t.Fatalf("Superuser update failed: %v", err)
	}
	if got.Score != 2 {
		t.Errorf("Expected score 2, got %d", got.Score)
	}

	if err := r.ratings.Delete(rating.ID, alice); err != nil {
		t.Fatalf("Author delete failed: %v", err)
	}
	if _, err := r.ratings.Get(rating.ID); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound after delete, got %v", err)
	}
}

func TestRatingListByUser(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	widget := mustCreateSolution(t, r, "Widget", alice)
	gadget := mustCreateSolution(t, r, "Gadget", alice)

	r.ratings.Upsert(widget.Slug, "alice", 4, "")
	r.ratings.Upsert(gadget.Slug, "alice", 2, "")
	r.ratings.Upsert(widget.Slug, "bob", 5, "")

	ratings, total, err := r.ratings.ListByUser("alice", 0, 20)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if total != 2 || len(ratings) != 2 {
		t.Errorf("Expected 2 ratings for alice, got total=%d len=%d", total, len(ratings))
	}
}
