package services

import (
	"testing"

	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
)

func TestSolutionSlugUniquification(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	first := mustCreateSolution(t, r, "Widget", alice)
	if first.Slug != "widget" {
		t.Errorf("Expected slug widget, got %s", first.Slug)
	}

	second := mustCreateSolution(t, r, "Widget", alice)
	if second.Slug != "widget-1" {
		t.Errorf("Expected slug widget-1, got %s", second.Slug)
	}

	third := mustCreateSolution(t, r, "Widget", alice)
	if third.Slug != "widget-2" {
		t.Errorf("Expected slug widget-2, got %s", third.Slug)
	}
}

func TestSolutionCreateDefaults(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	sol, err := r.solutions.Create(SolutionInput{
		Name:     "My Cool Solution",
		Category: "Databases",
	}, alice)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if sol.Slug != "my-cool-solution" {
		t.Errorf("Expected slug my-cool-solution, got %s", sol.Slug)
	}
	if sol.ReviewStatus != models.ReviewPending {
		t.Errorf("New solutions must start PENDING, got %s", sol.ReviewStatus)
	}
	if sol.MaintainerID != "alice" {
		t.Errorf("Maintainer should default to the creator, got %s", sol.MaintainerID)
	}
	if sol.MaintainerEmail != alice.Email {
		t.Errorf("Maintainer email should default from the creator profile, got %s", sol.MaintainerEmail)
	}
	if sol.CreatedBy != "alice" || sol.UpdatedBy != "alice" {
		t.Errorf("Audit fields not stamped: created_by=%s updated_by=%s", sol.CreatedBy, sol.UpdatedBy)
	}

	// The referenced category is created on the fly.
	cat, err := r.categories.GetByName("Databases")
	if err != nil || cat == nil {
		t.Errorf("Expected category to be auto-created: %v", err)
	}
}

func TestSolutionCreateRejectsUnknownEnums(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	if _, err := r.solutions.Create(SolutionInput{Name: "X", Stage: "LIMBO"}, alice); err == nil {
		t.Error("Expected error for unknown stage")
	}
	if _, err := r.solutions.Create(SolutionInput{Name: "X", RecommendStatus: "MAYBE"}, alice); err == nil {
		t.Error("Expected error for unknown recommend_status")
	}
}

func TestSolutionUpdatePermissions(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)
	mallory := seedUser(t, r.db, "mallory", "pw", false)
	admin := seedUser(t, r.db, "root", "pw", true)

	sol := mustCreateSolution(t, r, "Widget", alice)

	desc := "updated"
	if _, err := r.solutions.Update(sol.Slug, SolutionPatch{Description: &desc}, mallory); err == nil {
		t.Error("Expected Forbidden for a non-owner update")
	}

	approved := "APPROVED"
	if _, err := r.solutions.Update(sol.Slug, SolutionPatch{ReviewStatus: &approved}, alice); err == nil {
		t.Error("Expected Forbidden for a non-superuser review_status change")
	}

	got, err := r.solutions.Update(sol.Slug, SolutionPatch{ReviewStatus: &approved}, admin)
	if err != nil {
		t.Fatalf("Superuser review update failed: %v", err)
	}
	if got.ReviewStatus != models.ReviewApproved {
		t.Errorf("Expected APPROVED, got %s", got.ReviewStatus)
	}

	if _, err := r.solutions.Update(sol.Slug, SolutionPatch{Description: &desc}, alice); err != nil {
		t.Errorf("Creator update failed: %v", err)
	}
}

func TestSolutionRenameRegeneratesSlug(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	sol := mustCreateSolution(t, r, "Widget", alice)
	mustCreateSolution(t, r, "Gadget", alice)

	// Renaming onto a taken name gets a uniquified slug.
	name := "Gadget"
	got, err := r.solutions.Update(sol.Slug, SolutionPatch{Name: &name}, alice)
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got.Slug != "gadget-1" {
		t.Errorf("Expected slug gadget-1, got %s", got.Slug)
	}

	// Renaming back to the original name reclaims the free base slug.
	name = "Widget"
	got, err = r.solutions.Update(got.Slug, SolutionPatch{Name: &name}, alice)
	if err != nil {
		t.Fatalf("Rename back failed: %v", err)
	}
	if got.Slug != "widget" {
		t.Errorf("Expected slug widget, got %s", got.Slug)
	}
}

func TestSolutionDeleteCascades(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	sol := mustCreateSolution(t, r, "Widget", alice)
	if _, err := r.ratings.Upsert(sol.Slug, "alice", 5, "great"); err != nil {
		t.Fatalf("Rating failed: %v", err)
	}
	if _, err := r.comments.Create(sol.Slug, "alice", "first"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}

	if err := r.solutions.Delete(sol.Slug, alice); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var ratings, comments int64
	r.db.Model(&models.Rating{}).Where("solution_id = ?", sol.ID).Count(&ratings)
	r.db.Model(&models.Comment{}).Where("solution_id = ?", sol.ID).Count(&comments)
	if ratings != 0 || comments != 0 {
		t.Errorf("Expected cascade delete of ratings/comments, got %d/%d", ratings, comments)
	}

	// History for the deleted solution survives.
	records, _, err := r.history.List(HistoryFilter{ObjectType: "solution"}, 0, 20)
	if err != nil {
		t.Fatalf("History query failed: %v", err)
	}
	if len(records) == 0 {
		t.Error("Expected history records to survive solution deletion")
	}
}

func TestSolutionListCompoundFilter(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	if _, err := r.solutions.Create(SolutionInput{
		Name: "Widget", Category: "Infra", Department: "Core", Stage: models.StageProduction, Tags: []string{"go"},
	}, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.solutions.Create(SolutionInput{
		Name: "Gadget", Category: "Infra", Department: "Web", Stage: models.StageUAT, Tags: []string{"go"},
	}, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.solutions.Create(SolutionInput{
		Name: "Sprocket", Category: "Tools", Department: "Core", Stage: models.StageProduction,
	}, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sols, total, err := r.solutions.List(SolutionFilter{Category: "Infra", Department: "Core"}, 0, 20, "name")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(sols) != 1 || sols[0].Name != "Widget" {
		t.Errorf("Expected exactly Widget, got total=%d %v", total, sols)
	}

	sols, total, err = r.solutions.List(SolutionFilter{Tag: "GO"}, 0, 20, "name")
	if err != nil {
		t.Fatalf("Tag filter failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 tagged solutions, got %d", total)
	}
	for _, s := range sols {
		if !s.Tags.Contains("go") {
			t.Errorf("Solution %s does not carry the filter tag", s.Name)
		}
	}
}

func TestSolutionListPaginates(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		if _, err := r.solutions.Create(SolutionInput{Name: name, Tags: []string{"go"}}, alice); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	sols, total, err := r.solutions.List(SolutionFilter{}, 2, 2, "name")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected total 5 across all pages, got %d", total)
	}
	if len(sols) != 2 || sols[0].Name != "Charlie" || sols[1].Name != "Delta" {
		t.Errorf("Expected the second page [Charlie Delta], got %v", sols)
	}

	// Same page semantics on the tag-filtered path.
	sols, total, err = r.solutions.List(SolutionFilter{Tag: "go"}, 4, 2, "name")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 || len(sols) != 1 || sols[0].Name != "Echo" {
		t.Errorf("Expected the final page [Echo] of 5, got total=%d %v", total, sols)
	}
}

func TestSolutionListRejectsUnknownSort(t *testing.T) {
	r := setupRegistry(t)
	if _, _, err := r.solutions.List(SolutionFilter{}, 0, 20, "slug; DROP TABLE"); err == nil {
		t.Error("Expected error for a sort field outside the allow list")
	}
}

func TestSolutionSearchRanksNameAboveDescription(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	if _, err := r.solutions.Create(SolutionInput{
		Name: "Backup Runner", Description: "archives things",
	}, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.solutions.Create(SolutionInput{
		Name: "Archiver", Description: "a backup tool",
	}, alice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	hits, err := r.solutions.Search("backup", 20)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].Name != "Backup Runner" {
		t.Errorf("Expected the name match first, got %s", hits[0].Name)
	}
}

func TestSolutionAddRemoveTag(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	sol := mustCreateSolution(t, r, "Widget", alice)

	got, err := r.solutions.AddTag(sol.Slug, "Fast API", alice)
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if !got.Tags.Contains("fast-api") {
		t.Errorf("Expected canonical tag fast-api, got %v", got.Tags)
	}

	if _, err := r.solutions.AddTag(sol.Slug, "fast_api", alice); !types.IsConflict(err) {
		t.Errorf("Expected Conflict re-adding an attached tag, got %v", err)
	}

	if _, err := r.solutions.RemoveTag(sol.Slug, "FAST api", alice); err != nil {
		t.Fatalf("RemoveTag failed: %v", err)
	}
	if _, err := r.solutions.RemoveTag(sol.Slug, "fast-api", alice); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound removing an absent tag, got %v", err)
	}
}

func TestSolutionAdoptUserIdempotent(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	sol := mustCreateSolution(t, r, "Widget", alice)

	got, err := r.solutions.AdoptUser(sol.Slug, "bob")
	if err != nil {
		t.Fatalf("AdoptUser failed: %v", err)
	}
	got, err = r.solutions.AdoptUser(sol.Slug, "bob")
	if err != nil {
		t.Fatalf("Second AdoptUser failed: %v", err)
	}
	if len(got.AdoptedUsers) != 1 {
		t.Errorf("Expected one adopted-user entry, got %v", got.AdoptedUsers)
	}
}

func TestSolutionCheckName(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	available, slug, err := r.solutions.CheckName("Shiny Thing")
	if err != nil {
		t.Fatalf("CheckName failed: %v", err)
	}
	if !available || slug != "shiny-thing" {
		t.Errorf("Expected available shiny-thing, got %v %s", available, slug)
	}

	mustCreateSolution(t, r, "Shiny Thing", alice)
	available, _, err = r.solutions.CheckName("shiny thing")
	if err != nil {
		t.Fatalf("CheckName failed: %v", err)
	}
	if available {
		t.Error("Expected name to be reported as taken")
	}
}

func TestSolutionDepartments(t *testing.T) {
	r := setupRegistry(t)
	alice := seedUser(t, r.db, "alice", "pw", false)

	r.solutions.Create(SolutionInput{Name: "A", Department: "Web"}, alice)
	r.solutions.Create(SolutionInput{Name: "B", Department: "Core"}, alice)
	r.solutions.Create(SolutionInput{Name: "C", Department: "Web"}, alice)
	r.solutions.Create(SolutionInput{Name: "D"}, alice)

	departments, err := r.solutions.Departments()
	if err != nil {
		t.Fatalf("Departments failed: %v", err)
	}
	if len(departments) != 2 || departments[0] != "Core" || departments[1] != "Web" {
		t.Errorf("Expected sorted distinct [Core Web], got %v", departments)
	}
}
