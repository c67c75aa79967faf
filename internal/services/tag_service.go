package services

import (
	"fmt"

	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/naming"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
)

var tagSortFields = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// TagService is the tag registry, keyed by canonical names. Callers pass raw
// tag text everywhere; canonicalization happens at the boundary of every
// operation so two inputs that normalize identically hit the same row.
type TagService struct {
	db      *gorm.DB
	history *HistoryService
}

// NewTagService creates a tag service.
func NewTagService(db *gorm.DB, history *HistoryService) *TagService {
	return &TagService{db: db, history: history}
}

// Create persists a tag under the canonical form of the given name.
func (s *TagService) Create(rawName, description, actor string) (*models.Tag, error) {
	name := naming.CanonicalTag(rawName)
	if name == "" {
		return nil, types.InvalidArgument("tag.validation.name", "tag name must contain at least one letter or digit")
	}

	if existing, err := s.GetByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, types.Conflict("tag.conflict.name", "tag '%s' already exists", name)
	}

	tag := models.Tag{
		Name:        name,
		Description: description,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tag).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("tag.conflict.name", "tag '%s' already exists", name)
			}
			return err
		}
		return s.history.Record(tx, "tag", fmt.Sprintf("%d", tag.ID), tag.Name, models.ChangeCreate, actor, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByName canonicalizes the input before lookup; callers never pre-canonicalize.
// Returns nil when absent.
func (s *TagService) GetByName(rawName string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.Where("name = ?", naming.CanonicalTag(rawName)).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByID returns the tag by primary key, or nil when absent.
func (s *TagService) GetByID(id uint64) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.First(&tag, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreate resolves a raw tag name to its entity, creating it when needed.
func (s *TagService) GetOrCreate(rawName, actor string) (*models.Tag, error) {
	if existing, err := s.GetByName(rawName); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	tag, err := s.Create(rawName, "", actor)
	if err != nil {
		if types.IsConflict(err) {
			return s.GetByName(rawName)
		}
		return nil, err
	}
	return tag, nil
}

// List returns a page of tags with usage counts attached.
func (s *TagService) List(skip, limit int, sort string) ([]models.Tag, int64, error) {
	skip, limit = normalizePage(skip, limit)
	if sort == "" {
		sort = "name"
	}

	order, err := parseSort(sort, "tag.validation.sort", tagSortFields)
	if err != nil {
		return nil, 0, err
	}
	if sortField(sort) != "name" {
		order += ", name ASC"
	}

	var total int64
	if err := s.db.Model(&models.Tag{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tags []models.Tag
	if err := s.db.Order(order).Offset(skip).Limit(limit).Find(&tags).Error; err != nil {
		return nil, 0, err
	}

	for i := range tags {
		count, err := s.UsageCount(tags[i].Name)
		if err != nil {
			return nil, 0, err
		}
		tags[i].UsageCount = count
	}

	return tags, total, nil
}

// TagPatch carries the optional fields of an update.
type TagPatch struct {
	Name        *string
	Description *string
}

// Update patches a tag. When renaming with propagateToSolutions, every
// solution listing the old canonical name gets that single list entry
// replaced by the new one (field-level array element replace via a tags-only
// column update, not a full row rewrite).
func (s *TagService) Update(id uint64, patch TagPatch, propagateToSolutions bool, actor string) (*models.Tag, error) {
	tag, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, types.NotFound("tag.notfound", "tag %d not found", id)
	}

	oldValues := map[string]interface{}{
		"name":        tag.Name,
		"description": tag.Description,
	}
	oldName := tag.Name

	if patch.Name != nil {
		newName := naming.CanonicalTag(*patch.Name)
		if newName == "" {
			return nil, types.InvalidArgument("tag.validation.name", "tag name must contain at least one letter or digit")
		}
		if newName != tag.Name {
			if taken, err := s.GetByName(newName); err != nil {
				return nil, err
			} else if taken != nil {
				return nil, types.Conflict("tag.conflict.name", "tag '%s' already exists", newName)
			}
		}
		tag.Name = newName
	}
	if patch.Description != nil {
		tag.Description = *patch.Description
	}
	tag.UpdatedBy = actor

	newValues := map[string]interface{}{
		"name":        tag.Name,
		"description": tag.Description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(tag).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("tag.conflict.name", "tag '%s' already exists", tag.Name)
			}
			return err
		}
		if propagateToSolutions && tag.Name != oldName {
			if err := s.replaceTagOnSolutions(tx, oldName, tag.Name); err != nil {
				return err
			}
		}
		return s.history.Record(tx, "tag", fmt.Sprintf("%d", tag.ID), tag.Name, models.ChangeUpdate, actor, newValues, oldValues)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag unconditionally unless a solution still lists it.
func (s *TagService) Delete(id uint64, actor string) error {
	tag, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if tag == nil {
		return types.NotFound("tag.notfound", "tag %d not found", id)
	}

	count, err := s.UsageCount(tag.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return types.Conflict("tag.conflict.inuse", "tag '%s' is used by %d solution(s)", tag.Name, count)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Tag{}, tag.ID).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "tag", fmt.Sprintf("%d", tag.ID), tag.Name, models.ChangeDelete, actor, nil, nil)
	})
}

// UsageCount counts solutions listing this canonical tag. The count is
// unfiltered: draft and approved solutions both count (one consistent
// definition, applied everywhere).
func (s *TagService) UsageCount(rawName string) (int64, error) {
	name := naming.CanonicalTag(rawName)

	solutions, err := s.solutionsListingTag(s.db, name)
	if err != nil {
		return 0, err
	}
	return int64(len(solutions)), nil
}

// solutionsListingTag loads the solutions whose tag list contains name.
// The tag list is a JSON column, so membership is checked in Go after a
// coarse LIKE prefilter; that keeps the query portable across all four
// supported drivers.
func (s *TagService) solutionsListingTag(tx *gorm.DB, name string) ([]models.Solution, error) {
	var candidates []models.Solution
	if err := tx.Where("tags LIKE ?", "%"+name+"%").Find(&candidates).Error; err != nil {
		// JSONB columns reject LIKE on postgres; fall back to a full scan.
		if err2 := tx.Find(&candidates).Error; err2 != nil {
			return nil, err2
		}
	}

	matched := candidates[:0]
	for _, sol := range candidates {
		if sol.Tags.Contains(name) {
			matched = append(matched, sol)
		}
	}
	return matched, nil
}

// replaceTagOnSolutions swaps oldName for newName in the tag list of every
// solution listing it, updating only the tags column.
func (s *TagService) replaceTagOnSolutions(tx *gorm.DB, oldName, newName string) error {
	solutions, err := s.solutionsListingTag(tx, oldName)
	if err != nil {
		return err
	}
	for i := range solutions {
		sol := &solutions[i]
		for j, t := range sol.Tags {
			if t == oldName {
				sol.Tags[j] = newName
			}
		}
		if err := tx.Model(sol).Update("tags", sol.Tags).Error; err != nil {
			return err
		}
	}
	return nil
}
