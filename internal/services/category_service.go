package services

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
)

var categorySortFields = map[string]bool{
	"name":           true,
	"radar_quadrant": true,
	"created_at":     true,
	"updated_at":     true,
}

// CategoryService is the category registry. Listing results are cached for a
// bounded TTL keyed by (skip, limit, sort); the cache is flushed on every
// write and is never consulted by uniqueness checks.
type CategoryService struct {
	db        *gorm.DB
	history   *HistoryService
	listCache *gocache.Cache
}

// NewCategoryService creates a category service with the given list-cache TTL.
func NewCategoryService(db *gorm.DB, history *HistoryService, cacheTTL time.Duration) *CategoryService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &CategoryService{
		db:        db,
		history:   history,
		listCache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type cachedCategoryList struct {
	items []models.Category
	total int64
}

// Create persists a new category. The name is trimmed and must be non-empty
// and unique; the duplicate-key error from the unique index is the
// authoritative conflict signal, the pre-check is a fast path.
func (s *CategoryService) Create(name, description string, radarQuadrant int, actor string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.InvalidArgument("category.validation.name", "category name must not be empty")
	}
	if !models.ValidRadarQuadrant(radarQuadrant) {
		return nil, types.InvalidArgument("category.validation.quadrant", "radar_quadrant must be between -1 and 3")
	}

	if existing, err := s.GetByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, types.Conflict("category.conflict.name", "category '%s' already exists", name)
	}

	cat := models.Category{
		Name:          name,
		Description:   description,
		RadarQuadrant: radarQuadrant,
		CreatedBy:     actor,
		UpdatedBy:     actor,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cat).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("category.conflict.name", "category '%s' already exists", name)
			}
			return err
		}
		return s.history.Record(tx, "category", fmt.Sprintf("%d", cat.ID), cat.Name, models.ChangeCreate, actor, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	s.listCache.Flush()
	return &cat, nil
}

// GetByName returns the category with the exact trimmed name, or nil when
// absent.
func (s *CategoryService) GetByName(name string) (*models.Category, error) {
	var cat models.Category
	err := s.db.Where("name = ?", strings.TrimSpace(name)).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetByID returns the category by primary key, or nil when absent.
func (s *CategoryService) GetByID(id uint64) (*models.Category, error) {
	var cat models.Category
	err := s.db.First(&cat, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetOrCreate returns the category with the exact name, creating it with a
// placeholder description when a solution references a category that doesn't
// exist yet.
func (s *CategoryService) GetOrCreate(name, actor string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.InvalidArgument("category.validation.name", "category name must not be empty")
	}

	if existing, err := s.GetByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	cat, err := s.Create(name, fmt.Sprintf("Auto-created for solution referencing '%s'", name), models.RadarQuadrantUnassigned, actor)
	if err != nil {
		if types.IsConflict(err) {
			// Lost a concurrent create race; the winner's row is the one we want.
			return s.GetByName(name)
		}
		return nil, err
	}
	return cat, nil
}

// List returns a page of categories ordered by the allow-listed sort field,
// with a secondary name sort for stable ordering. Results may be served from
// the TTL cache; staleness is bounded by the TTL and only affects latency,
// never uniqueness decisions.
func (s *CategoryService) List(skip, limit int, sort string) ([]models.Category, int64, error) {
	skip, limit = normalizePage(skip, limit)
	if sort == "" {
		sort = "name"
	}

	cacheKey := fmt.Sprintf("%d:%d:%s", skip, limit, sort)
	if cached, ok := s.listCache.Get(cacheKey); ok {
		entry := cached.(cachedCategoryList)
		return entry.items, entry.total, nil
	}

	order, err := parseSort(sort, "category.validation.sort", categorySortFields)
	if err != nil {
		return nil, 0, err
	}
	if sortField(sort) != "name" {
		order += ", name ASC"
	}

	var total int64
	if err := s.db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cats []models.Category
	if err := s.db.Order(order).Offset(skip).Limit(limit).Find(&cats).Error; err != nil {
		return nil, 0, err
	}

	for i := range cats {
		count, err := s.UsageCount(cats[i].Name)
		if err != nil {
			return nil, 0, err
		}
		cats[i].UsageCount = count
	}

	s.listCache.Set(cacheKey, cachedCategoryList{items: cats, total: total}, gocache.DefaultExpiration)
	return cats, total, nil
}

// CategoryPatch carries the optional fields of an update.
type CategoryPatch struct {
	Name          *string
	Description   *string
	RadarQuadrant *int
}

// Update patches a category. A rename checks the new name's uniqueness and
// cascades to every solution referencing the old name. The parent update and
// the cascade run in one transaction where the driver supports it; the
// read-then-write sequence is preserved either way.
func (s *CategoryService) Update(id uint64, patch CategoryPatch, actor string) (*models.Category, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, types.NotFound("category.notfound", "category %d not found", id)
	}

	oldValues := map[string]interface{}{
		"name":           cat.Name,
		"description":    cat.Description,
		"radar_quadrant": cat.RadarQuadrant,
	}
	oldName := cat.Name

	if patch.Name != nil {
		newName := strings.TrimSpace(*patch.Name)
		if newName == "" {
			return nil, types.InvalidArgument("category.validation.name", "category name must not be empty")
		}
		if newName != cat.Name {
			if taken, err := s.GetByName(newName); err != nil {
				return nil, err
			} else if taken != nil {
				return nil, types.Conflict("category.conflict.name", "category '%s' already exists", newName)
			}
		}
		cat.Name = newName
	}
	if patch.Description != nil {
		cat.Description = *patch.Description
	}
	if patch.RadarQuadrant != nil {
		if !models.ValidRadarQuadrant(*patch.RadarQuadrant) {
			return nil, types.InvalidArgument("category.validation.quadrant", "radar_quadrant must be between -1 and 3")
		}
		cat.RadarQuadrant = *patch.RadarQuadrant
	}
	cat.UpdatedBy = actor

	newValues := map[string]interface{}{
		"name":           cat.Name,
		"description":    cat.Description,
		"radar_quadrant": cat.RadarQuadrant,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cat).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("category.conflict.name", "category '%s' already exists", cat.Name)
			}
			return err
		}
		if cat.Name != oldName {
			// Bulk-patch the denormalized category name on dependents.
			if err := tx.Model(&models.Solution{}).
				Where("category = ?", oldName).
				Update("category", cat.Name).Error; err != nil {
				return err
			}
		}
		return s.history.Record(tx, "category", fmt.Sprintf("%d", cat.ID), cat.Name, models.ChangeUpdate, actor, newValues, oldValues)
	})
	if err != nil {
		return nil, err
	}

	s.listCache.Flush()
	return cat, nil
}

// Delete removes a category. Fails with Conflict while any solution still
// references it by name.
func (s *CategoryService) Delete(id uint64, actor string) error {
	cat, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return types.NotFound("category.notfound", "category %d not found", id)
	}

	count, err := s.UsageCount(cat.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return types.Conflict("category.conflict.inuse", "category '%s' is used by %d solution(s)", cat.Name, count)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Category{}, cat.ID).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "category", fmt.Sprintf("%d", cat.ID), cat.Name, models.ChangeDelete, actor, nil, nil)
	})
	if err != nil {
		return err
	}

	s.listCache.Flush()
	return nil
}

// UsageCount counts solutions whose denormalized category equals this name.
func (s *CategoryService) UsageCount(name string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Solution{}).Where("category = ?", name).Count(&count).Error
	return count, err
}
