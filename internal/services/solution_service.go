package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/naming"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

var solutionSortFields = map[string]bool{
	"name":             true,
	"category":         true,
	"department":       true,
	"team":             true,
	"stage":            true,
	"recommend_status": true,
	"review_status":    true,
	"created_at":       true,
	"updated_at":       true,
}

// SolutionService is the solution registry. It resolves categories and tags
// through their registries (creating them when missing), derives unique slugs
// from names, and enforces the owner-or-superuser mutation rules.
type SolutionService struct {
	db         *gorm.DB
	categories *CategoryService
	tags       *TagService
	history    *HistoryService
}

// NewSolutionService creates a solution service.
func NewSolutionService(db *gorm.DB, categories *CategoryService, tags *TagService, history *HistoryService) *SolutionService {
	return &SolutionService{db: db, categories: categories, tags: tags, history: history}
}

// SolutionInput carries the writable fields of a solution.
type SolutionInput struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Brief            string   `json:"brief"`
	Category         string   `json:"category"`
	Department       string   `json:"department"`
	Team             string   `json:"team"`
	TeamEmail        string   `json:"team_email"`
	MaintainerID     string   `json:"maintainer_id"`
	MaintainerName   string   `json:"maintainer_name"`
	MaintainerEmail  string   `json:"maintainer_email"`
	OfficialWebsite  string   `json:"official_website"`
	DocumentationURL string   `json:"documentation_url"`
	DemoURL          string   `json:"demo_url"`
	Version          string   `json:"version"`
	Tags             []string `json:"tags"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	Stage            string   `json:"stage"`
	RecommendStatus  string   `json:"recommend_status"`
	ReviewStatus     string   `json:"review_status"`
}

// SolutionFilter narrows a listing. Zero values mean "no filter".
type SolutionFilter struct {
	Category        string
	Department      string
	Team            string
	Stage           string
	RecommendStatus string
	ReviewStatus    string
	Tag             string
}

// Create registers a solution: resolves or creates its category and tags,
// derives a unique slug, defaults maintainer identity from the actor, stamps
// audit fields and writes the history record.
func (s *SolutionService) Create(input SolutionInput, actor *models.User) (*models.Solution, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, types.InvalidArgument("solution.validation.name", "solution name must not be empty")
	}
	if err := validateEnums(input); err != nil {
		return nil, err
	}

	if input.Category != "" {
		if _, err := s.categories.GetOrCreate(input.Category, actor.Username); err != nil {
			return nil, err
		}
	}

	tagNames, err := s.resolveTags(input.Tags, actor.Username)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(name, 0)
	if err != nil {
		return nil, err
	}

	sol := models.Solution{
		Name:             name,
		Slug:             slug,
		Description:      input.Description,
		Brief:            input.Brief,
		Category:         strings.TrimSpace(input.Category),
		Department:       input.Department,
		Team:             input.Team,
		TeamEmail:        input.TeamEmail,
		MaintainerID:     input.MaintainerID,
		MaintainerName:   input.MaintainerName,
		MaintainerEmail:  input.MaintainerEmail,
		OfficialWebsite:  input.OfficialWebsite,
		DocumentationURL: input.DocumentationURL,
		DemoURL:          input.DemoURL,
		Version:          input.Version,
		Tags:             tagNames,
		Pros:             models.StringList(input.Pros),
		Cons:             models.StringList(input.Cons),
		Stage:            input.Stage,
		RecommendStatus:  input.RecommendStatus,
		ReviewStatus:     models.ReviewPending,
		AdoptedUsers:     models.StringList{},
		CreatedBy:        actor.Username,
		UpdatedBy:        actor.Username,
	}

	// Maintainer identity defaults to the creating actor's profile.
	if sol.MaintainerID == "" {
		sol.MaintainerID = actor.Username
	}
	if sol.MaintainerName == "" {
		sol.MaintainerName = actor.FullName
	}
	if sol.MaintainerEmail == "" {
		sol.MaintainerEmail = actor.Email
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sol).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("solution.conflict.slug", "slug '%s' already exists", sol.Slug)
			}
			return err
		}
		return s.history.Record(tx, "solution", fmt.Sprintf("%d", sol.ID), sol.Name, models.ChangeCreate, actor.Username, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// GetBySlug returns the solution by slug, or nil when absent.
func (s *SolutionService) GetBySlug(slug string) (*models.Solution, error) {
	var sol models.Solution
	err := s.db.Where("slug = ?", slug).First(&sol).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// SolutionPatch carries the optional fields of an update. Nil means "leave
// unchanged"; Tags/Pros/Cons replace the whole list when present.
type SolutionPatch struct {
	Name             *string   `json:"name"`
	Description      *string   `json:"description"`
	Brief            *string   `json:"brief"`
	Category         *string   `json:"category"`
	Department       *string   `json:"department"`
	Team             *string   `json:"team"`
	TeamEmail        *string   `json:"team_email"`
	MaintainerID     *string   `json:"maintainer_id"`
	MaintainerName   *string   `json:"maintainer_name"`
	MaintainerEmail  *string   `json:"maintainer_email"`
	OfficialWebsite  *string   `json:"official_website"`
	DocumentationURL *string   `json:"documentation_url"`
	DemoURL          *string   `json:"demo_url"`
	Version          *string   `json:"version"`
	Tags             *[]string `json:"tags"`
	Pros             *[]string `json:"pros"`
	Cons             *[]string `json:"cons"`
	Stage            *string   `json:"stage"`
	RecommendStatus  *string   `json:"recommend_status"`
	ReviewStatus     *string   `json:"review_status"`
}

// Update patches a solution. Only the original creator/maintainer or a
// superuser may mutate; review_status is superuser-only. A name change
// regenerates the slug, excluding the solution's own row from the collision
// check.
func (s *SolutionService) Update(slug string, patch SolutionPatch, actor *models.User) (*models.Solution, error) {
	sol, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	if !canMutate(sol, actor) {
		return nil, types.Forbidden("solution.authorization", "only the maintainer, creator or a superuser may modify this solution")
	}
	if patch.ReviewStatus != nil && !actor.IsSuperuser {
		return nil, types.Forbidden("solution.authorization.review", "only a superuser may change review_status")
	}

	oldValues := solutionSnapshot(sol)

	if patch.Name != nil {
		newName := strings.TrimSpace(*patch.Name)
		if newName == "" {
			return nil, types.InvalidArgument("solution.validation.name", "solution name must not be empty")
		}
		if newName != sol.Name {
			newSlug, err := s.uniqueSlug(newName, sol.ID)
			if err != nil {
				return nil, err
			}
			sol.Name = newName
			sol.Slug = newSlug
		}
	}
	if patch.Category != nil {
		cat := strings.TrimSpace(*patch.Category)
		if cat != "" {
			if _, err := s.categories.GetOrCreate(cat, actor.Username); err != nil {
				return nil, err
			}
		}
		sol.Category = cat
	}
	if patch.Tags != nil {
		tagNames, err := s.resolveTags(*patch.Tags, actor.Username)
		if err != nil {
			return nil, err
		}
		sol.Tags = tagNames
	}
	applyStringPatches(sol, patch)
	if patch.Stage != nil {
		if !models.ValidStage(*patch.Stage) {
			return nil, types.InvalidArgument("solution.validation.stage", "unknown stage '%s'", *patch.Stage)
		}
		sol.Stage = *patch.Stage
	}
	if patch.RecommendStatus != nil {
		if !models.ValidRecommendStatus(*patch.RecommendStatus) {
			return nil, types.InvalidArgument("solution.validation.recommend", "unknown recommend_status '%s'", *patch.RecommendStatus)
		}
		sol.RecommendStatus = *patch.RecommendStatus
	}
	if patch.ReviewStatus != nil {
		if !models.ValidReviewStatus(*patch.ReviewStatus) {
			return nil, types.InvalidArgument("solution.validation.review", "unknown review_status '%s'", *patch.ReviewStatus)
		}
		sol.ReviewStatus = *patch.ReviewStatus
	}
	sol.UpdatedBy = actor.Username

	newValues := solutionSnapshot(sol)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sol).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("solution.conflict.slug", "slug '%s' already exists", sol.Slug)
			}
			return err
		}
		return s.history.Record(tx, "solution", fmt.Sprintf("%d", sol.ID), sol.Name, models.ChangeUpdate, actor.Username, newValues, oldValues)
	})
	if err != nil {
		return nil, err
	}
	return sol, nil
}

// Delete hard-deletes a solution under the same permission rules as Update.
func (s *SolutionService) Delete(slug string, actor *models.User) error {
	sol, err := s.GetBySlug(slug)
	if err != nil {
		return err
	}
	if sol == nil {
		return types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	if !canMutate(sol, actor) {
		return types.Forbidden("solution.authorization", "only the maintainer, creator or a superuser may delete this solution")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Solution{}, sol.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("solution_id = ?", sol.ID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("solution_id = ?", sol.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "solution", fmt.Sprintf("%d", sol.ID), sol.Name, models.ChangeDelete, actor.Username, nil, nil)
	})
}

// List returns a page of solutions under a compound filter and an
// allow-listed sort, with a secondary name sort for stable ordering.
func (s *SolutionService) List(filter SolutionFilter, skip, limit int, sortExpr string) ([]models.Solution, int64, error) {
	skip, limit = normalizePage(skip, limit)
	if sortExpr == "" {
		sortExpr = "name"
	}

	order, err := parseSort(sortExpr, "solution.validation.sort", solutionSortFields)
	if err != nil {
		return nil, 0, err
	}
	if sortField(sortExpr) != "name" {
		order += ", name ASC"
	}

	q := s.db.Model(&models.Solution{})
	if filter.Category != "" {
		if s.db.Dialector.Name() == "mysql" {
			q = q.Clauses(hints.UseIndex("idx_solutions_category"))
		}
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Team != "" {
		q = q.Where("team = ?", filter.Team)
	}
	if filter.Stage != "" {
		q = q.Where("stage = ?", filter.Stage)
	}
	if filter.RecommendStatus != "" {
		q = q.Where("recommend_status = ?", filter.RecommendStatus)
	}
	if filter.ReviewStatus != "" {
		q = q.Where("review_status = ?", filter.ReviewStatus)
	}

	// Tag membership lives in a JSON column; that one filter is applied in
	// Go for portability, everything else paginates in SQL.
	if filter.Tag == "" {
		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		var sols []models.Solution
		err := q.Order(order).Offset(skip).Limit(limit).Find(&sols).Error
		return sols, total, err
	}

	var sols []models.Solution
	if err := q.Order(order).Find(&sols).Error; err != nil {
		return nil, 0, err
	}

	tag := naming.CanonicalTag(filter.Tag)
	filtered := sols[:0]
	for _, sol := range sols {
		if sol.Tags.Contains(tag) {
			filtered = append(filtered, sol)
		}
	}
	sols = filtered

	total := int64(len(sols))
	if skip >= len(sols) {
		return []models.Solution{}, total, nil
	}
	end := skip + limit
	if end > len(sols) {
		end = len(sols)
	}
	return sols[skip:end], total, nil
}

// ListByMaintainer returns the solutions created or maintained by username.
func (s *SolutionService) ListByMaintainer(username string, skip, limit int) ([]models.Solution, int64, error) {
	skip, limit = normalizePage(skip, limit)

	q := s.db.Model(&models.Solution{}).
		Where("created_by = ? OR maintainer_id = ?", username, username)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sols []models.Solution
	err := q.Order("name ASC").Offset(skip).Limit(limit).Find(&sols).Error
	return sols, total, err
}

// Departments returns the distinct non-empty department names, sorted.
func (s *SolutionService) Departments() ([]string, error) {
	var departments []string
	err := s.db.Model(&models.Solution{}).
		Where("department <> ''").
		Distinct().
		Order("department ASC").
		Pluck("department", &departments).Error
	return departments, err
}

// CheckName reports whether a solution name is still available, i.e. its
// derived slug is not taken.
func (s *SolutionService) CheckName(name string) (bool, string, error) {
	base := naming.Slugify(name)
	if base == "" {
		return false, "", types.InvalidArgument("solution.validation.name", "name produces an empty slug")
	}
	existing, err := s.GetBySlug(base)
	if err != nil {
		return false, base, err
	}
	return existing == nil, base, nil
}

// searchWeights orders the fields by match relevance, best first.
var searchWeights = []struct {
	weight int
	value  func(*models.Solution) []string
}{
	{0, func(s *models.Solution) []string { return []string{s.Name} }},
	{1, func(s *models.Solution) []string { return []string{s.Category} }},
	{2, func(s *models.Solution) []string { return s.Tags }},
	{3, func(s *models.Solution) []string { return []string{s.Team, s.MaintainerName, s.MaintainerID} }},
	{4, func(s *models.Solution) []string { return []string{s.Description, s.Brief} }},
	{5, func(s *models.Solution) []string { return append(append([]string{}, s.Pros...), s.Cons...) }},
}

// Search matches the keyword across name, category, tags, team, maintainer,
// description, pros and cons, returning the best matches first. Ranking is a
// simple field-weight order: a name hit beats a category hit beats a
// description hit.
func (s *SolutionService) Search(keyword string, limit int) ([]models.Solution, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, types.InvalidArgument("solution.validation.search", "search keyword must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var all []models.Solution
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}

	type ranked struct {
		sol    models.Solution
		weight int
	}
	var hits []ranked
	for _, sol := range all {
		best := -1
		for _, fw := range searchWeights {
			for _, v := range fw.value(&sol) {
				if v != "" && strings.Contains(strings.ToLower(v), keyword) {
					best = fw.weight
					break
				}
			}
			if best >= 0 {
				break
			}
		}
		if best >= 0 {
			hits = append(hits, ranked{sol: sol, weight: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].weight != hits[j].weight {
			return hits[i].weight < hits[j].weight
		}
		return hits[i].sol.Name < hits[j].sol.Name
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.Solution, len(hits))
	for i, h := range hits {
		out[i] = h.sol
	}
	return out, nil
}

// AddTag attaches a tag to a solution. Adding a tag that is already present
// fails with Conflict rather than being silently ignored.
func (s *SolutionService) AddTag(slug, rawTag string, actor *models.User) (*models.Solution, error) {
	sol, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	if !canMutate(sol, actor) {
		return nil, types.Forbidden("solution.authorization", "only the maintainer, creator or a superuser may modify this solution")
	}

	tag, err := s.tags.GetOrCreate(rawTag, actor.Username)
	if err != nil {
		return nil, err
	}
	if sol.Tags.Contains(tag.Name) {
		return nil, types.Conflict("solution.conflict.tag", "tag '%s' is already attached", tag.Name)
	}

	sol.Tags = append(sol.Tags, tag.Name)
	sol.UpdatedBy = actor.Username
	if err := s.db.Model(sol).Updates(map[string]interface{}{"tags": sol.Tags, "updated_by": actor.Username}).Error; err != nil {
		return nil, err
	}
	return sol, nil
}

// RemoveTag detaches a tag; removing a tag that isn't present fails with
// NotFound.
func (s *SolutionService) RemoveTag(slug, rawTag string, actor *models.User) (*models.Solution, error) {
	sol, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	if !canMutate(sol, actor) {
		return nil, types.Forbidden("solution.authorization", "only the maintainer, creator or a superuser may modify this solution")
	}

	name := naming.CanonicalTag(rawTag)
	if !sol.Tags.Contains(name) {
		return nil, types.NotFound("solution.notfound.tag", "tag '%s' is not attached to '%s'", name, slug)
	}

	kept := models.StringList{}
	for _, t := range sol.Tags {
		if t != name {
			kept = append(kept, t)
		}
	}
	sol.Tags = kept
	sol.UpdatedBy = actor.Username
	if err := s.db.Model(sol).Updates(map[string]interface{}{"tags": sol.Tags, "updated_by": actor.Username}).Error; err != nil {
		return nil, err
	}
	return sol, nil
}

// AdoptUser records a username in the solution's adopted-users list;
// idempotent.
func (s *SolutionService) AdoptUser(slug, username string) (*models.Solution, error) {
	sol, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	if sol.AdoptedUsers.Contains(username) {
		return sol, nil
	}
	sol.AdoptedUsers = append(sol.AdoptedUsers, username)
	if err := s.db.Model(sol).Update("adopted_users", sol.AdoptedUsers).Error; err != nil {
		return nil, err
	}
	return sol, nil
}

// uniqueSlug derives the base slug from name and extends it with -1, -2, …
// until no other solution holds it. excludeID skips the entity's own row so a
// rename back to the same name keeps its slug.
func (s *SolutionService) uniqueSlug(name string, excludeID uint64) (string, error) {
	base := naming.Slugify(name)
	if base == "" {
		return "", types.InvalidArgument("solution.validation.name", "name produces an empty slug")
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		q := s.db.Model(&models.Solution{}).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// resolveTags canonicalizes and resolves/creates each raw tag, dropping
// duplicates while preserving first-seen order.
func (s *SolutionService) resolveTags(raw []string, actor string) (models.StringList, error) {
	out := models.StringList{}
	for _, r := range raw {
		tag, err := s.tags.GetOrCreate(r, actor)
		if err != nil {
			return nil, err
		}
		if !out.Contains(tag.Name) {
			out = append(out, tag.Name)
		}
	}
	return out, nil
}

// canMutate implements the owner-or-superuser rule.
func canMutate(sol *models.Solution, actor *models.User) bool {
	return actor.IsSuperuser || sol.CreatedBy == actor.Username || sol.MaintainerID == actor.Username
}

func validateEnums(input SolutionInput) error {
	if !models.ValidStage(input.Stage) {
		return types.InvalidArgument("solution.validation.stage", "unknown stage '%s'", input.Stage)
	}
	if !models.ValidRecommendStatus(input.RecommendStatus) {
		return types.InvalidArgument("solution.validation.recommend", "unknown recommend_status '%s'", input.RecommendStatus)
	}
	return nil
}

// applyStringPatches copies the plain string fields of the patch onto the row.
func applyStringPatches(sol *models.Solution, patch SolutionPatch) {
	if patch.Description != nil {
		sol.Description = *patch.Description
	}
	if patch.Brief != nil {
		sol.Brief = *patch.Brief
	}
	if patch.Department != nil {
		sol.Department = *patch.Department
	}
	if patch.Team != nil {
		sol.Team = *patch.Team
	}
	if patch.TeamEmail != nil {
		sol.TeamEmail = *patch.TeamEmail
	}
	if patch.MaintainerID != nil {
		sol.MaintainerID = *patch.MaintainerID
	}
	if patch.MaintainerName != nil {
		sol.MaintainerName = *patch.MaintainerName
	}
	if patch.MaintainerEmail != nil {
		sol.MaintainerEmail = *patch.MaintainerEmail
	}
	if patch.OfficialWebsite != nil {
		sol.OfficialWebsite = *patch.OfficialWebsite
	}
	if patch.DocumentationURL != nil {
		sol.DocumentationURL = *patch.DocumentationURL
	}
	if patch.DemoURL != nil {
		sol.DemoURL = *patch.DemoURL
	}
	if patch.Version != nil {
		sol.Version = *patch.Version
	}
	if patch.Pros != nil {
		sol.Pros = models.StringList(*patch.Pros)
	}
	if patch.Cons != nil {
		sol.Cons = models.StringList(*patch.Cons)
	}
}

// solutionSnapshot captures the diffable fields for history records.
func solutionSnapshot(sol *models.Solution) map[string]interface{} {
	return map[string]interface{}{
		"name":             sol.Name,
		"slug":             sol.Slug,
		"description":      sol.Description,
		"brief":            sol.Brief,
		"category":         sol.Category,
		"department":       sol.Department,
		"team":             sol.Team,
		"maintainer_id":    sol.MaintainerID,
		"version":          sol.Version,
		"tags":             []string(sol.Tags),
		"pros":             []string(sol.Pros),
		"cons":             []string(sol.Cons),
		"stage":            sol.Stage,
		"recommend_status": sol.RecommendStatus,
		"review_status":    sol.ReviewStatus,
	}
}
