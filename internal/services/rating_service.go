package services

import (
	"github.com/google/uuid"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
)

// RatingService keeps at most one rating per (solution, user) pair. Summary
// statistics are recomputed from the full current set at query time; no
// running totals are persisted.
type RatingService struct {
	db        *gorm.DB
	solutions *SolutionService
}

// NewRatingService creates a rating service.
func NewRatingService(db *gorm.DB, solutions *SolutionService) *RatingService {
	return &RatingService{db: db, solutions: solutions}
}

// Upsert posts a rating: an update matching (solution, username) first, and
// an insert when no row matched. The unique pair index resolves the race
// between two concurrent first posts.
func (s *RatingService) Upsert(slug, username string, score int, comment string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, types.InvalidArgument("rating.validation.score", "score must be between 1 and 5")
	}

	sol, err := s.solutions.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("rating.notfound.solution", "solution '%s' not found", slug)
	}

	res := s.db.Model(&models.Rating{}).
		Where("solution_id = ? AND username = ?", sol.ID, username).
		Updates(map[string]interface{}{"score": score, "comment": comment})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		rating := models.Rating{
			ID:         uuid.New().String(),
			SolutionID: sol.ID,
			Username:   username,
			Score:      score,
			Comment:    comment,
		}
		if err := s.db.Create(&rating).Error; err != nil {
			if !isDuplicateKey(err) {
				return nil, err
			}
			// Lost the insert race; fall through to read the winner and retry
			// as an update.
			if err := s.db.Model(&models.Rating{}).
				Where("solution_id = ? AND username = ?", sol.ID, username).
				Updates(map[string]interface{}{"score": score, "comment": comment}).Error; err != nil {
				return nil, err
			}
		}
	}

	var out models.Rating
	if err := s.db.Where("solution_id = ? AND username = ?", sol.ID, username).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListForSolution returns the ratings of a solution newest-first.
func (s *RatingService) ListForSolution(slug string, skip, limit int) ([]models.Rating, int64, error) {
	sol, err := s.solutions.GetBySlug(slug)
	if err != nil {
		return nil, 0, err
	}
	if sol == nil {
		return nil, 0, types.NotFound("rating.notfound.solution", "solution '%s' not found", slug)
	}

	skip, limit = normalizePage(skip, limit)
	q := s.db.Model(&models.Rating{}).Where("solution_id = ?", sol.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []models.Rating
	err = q.Order("updated_at DESC").Offset(skip).Limit(limit).Find(&ratings).Error
	return ratings, total, err
}

// ListByUser returns the ratings a user has posted.
func (s *RatingService) ListByUser(username string, skip, limit int) ([]models.Rating, int64, error) {
	skip, limit = normalizePage(skip, limit)
	q := s.db.Model(&models.Rating{}).Where("username = ?", username)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []models.Rating
	err := q.Order("updated_at DESC").Offset(skip).Limit(limit).Find(&ratings).Error
	return ratings, total, err
}

// Summary aggregates average, count and the 1..5 histogram over all current
// ratings of the solution.
func (s *RatingService) Summary(slug string) (*models.RatingSummary, error) {
	sol, err := s.solutions.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("rating.notfound.solution", "solution '%s' not found", slug)
	}

	type bucket struct {
		Score int
		N     int64
	}
	var buckets []bucket
	err = s.db.Model(&models.Rating{}).
		Select("score AS score, COUNT(*) AS n").
		Where("solution_id = ?", sol.ID).
		Group("score").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	summary := &models.RatingSummary{Histogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, b := range buckets {
		summary.Histogram[b.Score] = b.N
		summary.Count += b.N
		sum += int64(b.Score) * b.N
	}
	if summary.Count > 0 {
		summary.Average = float64(sum) / float64(summary.Count)
	}
	return summary, nil
}

// Get returns a rating by id, or NotFound.
func (s *RatingService) Get(id string) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.Where("id = ?", id).First(&rating).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.NotFound("rating.notfound", "rating '%s' not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Update modifies a rating in place; author-or-superuser only.
func (s *RatingService) Update(id string, score int, comment string, actor *models.User) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, types.InvalidArgument("rating.validation.score", "score must be between 1 and 5")
	}

	rating, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if rating.Username != actor.Username && !actor.IsSuperuser {
		return nil, types.Forbidden("rating.authorization", "only the author or a superuser may modify this rating")
	}

	if err := s.db.Model(rating).Updates(map[string]interface{}{"score": score, "comment": comment}).Error; err != nil {
		return nil, err
	}
	rating.Score = score
	rating.Comment = comment
	return rating, nil
}

// Delete removes a rating; author-or-superuser only.
func (s *RatingService) Delete(id string, actor *models.User) error {
	rating, err := s.Get(id)
	if err != nil {
		return err
	}
	if rating.Username != actor.Username && !actor.IsSuperuser {
		return types.Forbidden("rating.authorization", "only the author or a superuser may delete this rating")
	}
	return s.db.Delete(&models.Rating{}, "id = ?", id).Error
}
