package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
)

// CommentService holds free-text comments on solutions, many per solution,
// ordered by creation time.
type CommentService struct {
	db        *gorm.DB
	solutions *SolutionService
}

// NewCommentService creates a comment service.
func NewCommentService(db *gorm.DB, solutions *SolutionService) *CommentService {
	return &CommentService{db: db, solutions: solutions}
}

// validateContent trims and bounds the comment body.
func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", types.InvalidArgument("comment.validation.content", "comment must not be empty")
	}
	if len(content) > models.CommentMaxLength {
		return "", types.InvalidArgument("comment.validation.content", "comment exceeds %d characters", models.CommentMaxLength)
	}
	return content, nil
}

// Create posts a comment on a solution.
func (s *CommentService) Create(slug, username, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	sol, err := s.solutions.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, types.NotFound("comment.notfound.solution", "solution '%s' not found", slug)
	}

	comment := models.Comment{
		ID:         uuid.New().String(),
		SolutionID: sol.ID,
		Username:   username,
		Content:    content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForSolution returns a solution's comments ordered by creation time.
func (s *CommentService) ListForSolution(slug string, skip, limit int) ([]models.Comment, int64, error) {
	sol, err := s.solutions.GetBySlug(slug)
	if err != nil {
		return nil, 0, err
	}
	if sol == nil {
		return nil, 0, types.NotFound("comment.notfound.solution", "solution '%s' not found", slug)
	}

	skip, limit = normalizePage(skip, limit)
	q := s.db.Model(&models.Comment{}).Where("solution_id = ?", sol.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err = q.Order("created_at ASC").Offset(skip).Limit(limit).Find(&comments).Error
	return comments, total, err
}

// ListByUser returns the comments a user has posted, newest-first.
func (s *CommentService) ListByUser(username string, skip, limit int) ([]models.Comment, int64, error) {
	skip, limit = normalizePage(skip, limit)
	q := s.db.Model(&models.Comment{}).Where("username = ?", username)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&comments).Error
	return comments, total, err
}

// Get returns a comment by id, or NotFound.
func (s *CommentService) Get(id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Where("id = ?", id).First(&comment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.NotFound("comment.notfound", "comment '%s' not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update edits a comment's content; author-or-superuser only.
func (s *CommentService) Update(id, content string, actor *models.User) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if comment.Username != actor.Username && !actor.IsSuperuser {
		return nil, types.Forbidden("comment.authorization", "only the author or a superuser may modify this comment")
	}

	if err := s.db.Model(comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// Delete removes a comment; author-or-superuser only.
func (s *CommentService) Delete(id string, actor *models.User) error {
	comment, err := s.Get(id)
	if err != nil {
		return err
	}
	if comment.Username != actor.Username && !actor.IsSuperuser {
		return types.Forbidden("comment.authorization", "only the author or a superuser may delete this comment")
	}
	return s.db.Delete(&models.Comment{}, "id = ?", id).Error
}
